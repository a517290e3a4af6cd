package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ProducerConfig holds producer configuration
type ProducerConfig struct {
	Brokers  []string
	ClientID string
	// MaxRetries bounds per-record produce retries inside the client
	MaxRetries    int
	RetryInterval time.Duration
	LingerMs      int
}

// Message is a record to produce
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Producer produces records synchronously with franz-go
type Producer struct {
	client *kgo.Client
}

// NewProducer creates a client and checks that a broker answers
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, kgo.RecordRetries(cfg.MaxRetries))
	}
	if cfg.RetryInterval > 0 {
		interval := cfg.RetryInterval
		opts = append(opts, kgo.RetryBackoffFn(func(int) time.Duration { return interval }))
	}
	if cfg.LingerMs > 0 {
		opts = append(opts, kgo.ProducerLinger(time.Duration(cfg.LingerMs)*time.Millisecond))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach kafka brokers: %w", err)
	}

	return &Producer{client: client}, nil
}

// Produce writes msg and waits for the broker acknowledgement
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	return p.client.ProduceSync(ctx, toRecord(msg)).FirstErr()
}

// Close flushes buffered records and closes the client
func (p *Producer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}

func toRecord(msg *Message) *kgo.Record {
	record := &kgo.Record{
		Topic:     msg.Topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Timestamp: msg.Timestamp,
	}
	for k, v := range msg.Headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return record
}
