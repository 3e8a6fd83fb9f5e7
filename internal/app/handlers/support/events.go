package support

import (
	"context"
	"time"

	"rentbook/internal/app/outbox"
	"rentbook/internal/domain/shared/events"
)

// Recorder is implemented by aggregates that buffer domain events.
type Recorder interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

// FlushEvents moves the pending events of every aggregate into the outbox.
func FlushEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, aggregates ...Recorder) error {
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		pending := agg.PendingEvents()
		agg.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, box, encoder, pending); err != nil {
			return err
		}
	}
	return nil
}

// Now returns override when set, the current UTC time otherwise.
func Now(override time.Time) time.Time {
	if override.IsZero() {
		return time.Now().UTC()
	}
	return override.UTC()
}
