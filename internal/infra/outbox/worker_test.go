package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	appoutbox "rentbook/internal/app/outbox"
	"rentbook/internal/infra/obs"
	"rentbook/internal/infra/outbox"
	"rentbook/internal/infra/storage/memory"
)

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	mu   sync.Mutex
	fail error
	sent []published
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.sent = append(p.sent, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func addRecord(t *testing.T, box *memory.Outbox, id, name string) {
	t.Helper()
	err := box.Add(context.Background(), appoutbox.EventRecord{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"booking_id":"b1"}`),
		OccurredAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Aggregate:  "b1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestDrainPublishesCloudEvents(t *testing.T) {
	box := memory.NewOutbox()
	addRecord(t, box, "e1", "booking.created")
	addRecord(t, box, "e2", "payment.created")
	producer := &fakeProducer{}
	w := &outbox.Worker{Store: box, Producer: producer, Logger: obs.Discard(), TopicPrefix: "rentbook."}

	n, err := w.Drain(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Drain = %d, %v", n, err)
	}
	if producer.sent[0].topic != "rentbook.booking.events.v1" || producer.sent[1].topic != "rentbook.payment.events.v1" {
		t.Fatalf("unexpected topics %+v", producer.sent)
	}
	first := producer.sent[0]
	if first.key != "b1" || first.headers["ce-type"] != "booking.created.v1" || first.headers["traceparent"] == "" {
		t.Fatalf("unexpected message %+v", first)
	}
	var envelope map[string]any
	if err := json.Unmarshal(first.payload, &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope["specversion"] != "1.0" || envelope["id"] != "e1" || envelope["subject"] != "b1" {
		t.Fatalf("unexpected envelope %v", envelope)
	}
	for _, rec := range box.Records() {
		if rec.State != outbox.StateSent {
			t.Fatalf("record %s state = %s", rec.ID, rec.State)
		}
	}
	if err := box.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(box.Records()) != 0 {
		t.Fatalf("flush should drop delivered records")
	}
}

func TestDrainSchedulesRetryOnFailure(t *testing.T) {
	box := memory.NewOutbox()
	addRecord(t, box, "e1", "booking.created")
	producer := &fakeProducer{fail: errors.New("broker down")}
	w := &outbox.Worker{Store: box, Producer: producer, Backoff: []time.Duration{time.Hour}}

	n, err := w.Drain(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Drain = %d, %v", n, err)
	}
	rec := box.Records()[0]
	if rec.State != outbox.StateFailed || rec.Attempts != 1 || rec.LastError != "broker down" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if !rec.NextAttempt.After(time.Now().Add(30 * time.Minute)) {
		t.Fatalf("retry should follow the backoff, next attempt %v", rec.NextAttempt)
	}

	producer.fail = nil
	if n, _ := w.Drain(context.Background()); n != 0 {
		t.Fatalf("record must wait for its backoff, delivered %d", n)
	}
}

func TestDrainRespectsBatchSize(t *testing.T) {
	box := memory.NewOutbox()
	for _, id := range []string{"e1", "e2", "e3"} {
		addRecord(t, box, id, "review.submitted")
	}
	w := &outbox.Worker{Store: box, Producer: &fakeProducer{}, BatchSize: 2}
	if n, err := w.Drain(context.Background()); err != nil || n != 2 {
		t.Fatalf("first drain = %d, %v", n, err)
	}
	if n, err := w.Drain(context.Background()); err != nil || n != 1 {
		t.Fatalf("second drain = %d, %v", n, err)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	w := &outbox.Worker{Store: memory.NewOutbox(), Producer: outbox.LogProducer{}, Interval: time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run = %v", err)
	}
	if err := (&outbox.Worker{}).Run(context.Background()); !errors.Is(err, outbox.ErrWorkerNotConfigured) {
		t.Fatalf("expected ErrWorkerNotConfigured, got %v", err)
	}
}
