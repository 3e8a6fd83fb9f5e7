package kafka

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"rentbook/internal/infra/outbox"
)

// Options tune the booking event producer.
type Options struct {
	Brokers      []string
	ClientID     string
	Version      string
	WriteTimeout time.Duration
}

var ErrNoBrokers = errors.New("kafka: no brokers configured")

// Producer publishes outbox events synchronously so the worker only marks
// a record sent after the broker acknowledged it.
type Producer struct {
	sync sarama.SyncProducer
}

// NewConfig returns an idempotent, all-acks producer configuration.
func NewConfig(opts Options) (*sarama.Config, error) {
	cfg := sarama.NewConfig()
	if opts.ClientID != "" {
		cfg.ClientID = opts.ClientID
	}
	if opts.Version != "" {
		v, err := sarama.ParseKafkaVersion(opts.Version)
		if err != nil {
			return nil, err
		}
		cfg.Version = v
	}
	if opts.WriteTimeout > 0 {
		cfg.Producer.Timeout = opts.WriteTimeout
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	// Records keyed by aggregate id keep per-booking ordering.
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	return cfg, nil
}

func NewProducer(opts Options) (*Producer, error) {
	brokers := cleanBrokers(opts.Brokers)
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	cfg, err := NewConfig(opts)
	if err != nil {
		return nil, err
	}
	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sp}, nil
}

// NewProducerFrom wraps an existing sarama producer, e.g. a mock in tests.
func NewProducerFrom(sp sarama.SyncProducer) *Producer {
	return &Producer{sync: sp}
}

func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := p.sync.SendMessage(newMessage(topic, key, payload, headers))
	return err
}

func (p *Producer) Close() error {
	if p == nil || p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

func newMessage(topic, key string, payload []byte, headers map[string]string) *sarama.ProducerMessage {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	hs := make([]sarama.RecordHeader, 0, len(names))
	for _, name := range names {
		hs = append(hs, sarama.RecordHeader{Key: []byte(name), Value: []byte(headers[name])})
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	return msg
}

// cleanBrokers accepts entries that may themselves be comma separated.
func cleanBrokers(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, b := range strings.Split(entry, ",") {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
	}
	return out
}

var _ outbox.Producer = (*Producer)(nil)
