package kafka

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/IBM/sarama"
)

type captureProducer struct {
	sarama.SyncProducer
	sent []*sarama.ProducerMessage
	err  error
}

func (c *captureProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	c.sent = append(c.sent, msg)
	return 0, int64(len(c.sent)), c.err
}

func (c *captureProducer) Close() error { return nil }

func TestPublishBuildsKeyedMessageWithSortedHeaders(t *testing.T) {
	capture := &captureProducer{}
	p := NewProducerFrom(capture)

	err := p.Publish(context.Background(), "booking.events.v1", "bk-1", []byte(`{}`), map[string]string{
		"ce-type":      "booking.created",
		"content-type": "application/cloudevents+json",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(capture.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(capture.sent))
	}
	msg := capture.sent[0]
	if msg.Topic != "booking.events.v1" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}
	if key, _ := msg.Key.Encode(); string(key) != "bk-1" {
		t.Fatalf("unexpected key %q", key)
	}
	var names []string
	for _, h := range msg.Headers {
		names = append(names, string(h.Key))
	}
	if !reflect.DeepEqual(names, []string{"ce-type", "content-type"}) {
		t.Fatalf("unexpected header order %v", names)
	}
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	capture := &captureProducer{}
	p := NewProducerFrom(capture)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Publish(ctx, "t", "k", nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(capture.sent) != 0 {
		t.Fatalf("nothing should be sent")
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(Options{Brokers: []string{" , "}}); !errors.Is(err, ErrNoBrokers) {
		t.Fatalf("expected ErrNoBrokers, got %v", err)
	}
}

func TestCleanBrokersSplitsCommaLists(t *testing.T) {
	got := cleanBrokers([]string{"a:9092, b:9092", "", "c:9092"})
	want := []string{"a:9092", "b:9092", "c:9092"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNewConfigRejectsUnknownVersion(t *testing.T) {
	if _, err := NewConfig(Options{Version: "not-a-version"}); err == nil {
		t.Fatalf("expected version parse error")
	}
	cfg, err := NewConfig(Options{ClientID: "rentbook", Version: "3.6.0"})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.ClientID != "rentbook" || !cfg.Producer.Idempotent || cfg.Producer.RequiredAcks != sarama.WaitForAll {
		t.Fatalf("unexpected config %+v", cfg.Producer)
	}
}
