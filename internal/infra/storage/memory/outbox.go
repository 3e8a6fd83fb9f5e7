package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "rentbook/internal/app/outbox"
	infraoutbox "rentbook/internal/infra/outbox"
)

// Outbox keeps event records in memory and serves them to the delivery
// worker. Flush drops records that were already delivered.
type Outbox struct {
	mu      sync.Mutex
	records []*infraoutbox.EventDocument
	now     func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{now: func() time.Time { return time.Now().UTC() }}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	headers := make(map[string]string, len(record.Headers))
	for k, v := range record.Headers {
		headers[k] = v
	}
	o.records = append(o.records, &infraoutbox.EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     append([]byte(nil), record.Payload...),
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     headers,
		State:       infraoutbox.StateNew,
		NextAttempt: o.clock(),
	})
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.records[:0]
	for _, rec := range o.records {
		if rec.State != infraoutbox.StateSent {
			kept = append(kept, rec)
		}
	}
	for i := len(kept); i < len(o.records); i++ {
		o.records[i] = nil
	}
	o.records = kept
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.clock()
	for _, rec := range o.records {
		if rec.State != infraoutbox.StateNew && rec.State != infraoutbox.StateFailed {
			continue
		}
		if rec.NextAttempt.After(now) {
			continue
		}
		rec.State = infraoutbox.StateClaimed
		rec.ClaimedBy = workerID
		rec.ClaimedAt = now
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if rec := o.find(id); rec != nil {
		rec.State = infraoutbox.StateSent
		rec.SentAt = o.clock()
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if rec := o.find(id); rec != nil {
		rec.State = infraoutbox.StateFailed
		rec.NextAttempt = next
		rec.LastError = errMsg
		rec.Attempts++
	}
	return nil
}

// Records returns copies of every stored record, oldest first.
func (o *Outbox) Records() []infraoutbox.EventDocument {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]infraoutbox.EventDocument, 0, len(o.records))
	for _, rec := range o.records {
		out = append(out, *rec)
	}
	return out
}

func (o *Outbox) find(id string) *infraoutbox.EventDocument {
	for _, rec := range o.records {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

func (o *Outbox) clock() time.Time {
	if o.now == nil {
		return time.Now().UTC()
	}
	return o.now()
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)
