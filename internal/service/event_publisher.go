package service

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/pkg/kafka"
	"github.com/prohmpiriya/experience-marketplace/pkg/telemetry"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish writes event to the message bus
	Publish(ctx context.Context, event *domain.DomainEvent) error

	// Close closes the event publisher
	Close() error
}

// MessageProducer is the part of kafka.Producer the publisher needs
type MessageProducer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
	Close()
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Topic       string
	ServiceName string
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    MessageProducer
	topic       string
	serviceName string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(producer MessageProducer, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("kafka producer is required")
	}

	topic := "marketplace-events"
	serviceName := "experience-marketplace"
	if cfg != nil {
		if cfg.Topic != "" {
			topic = cfg.Topic
		}
		if cfg.ServiceName != "" {
			serviceName = cfg.ServiceName
		}
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// Publish publishes event keyed by its aggregate ID
func (p *KafkaEventPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(event.Type),
		"event_id":     event.ID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}
	maps.Copy(headers, telemetry.InjectContext(ctx))

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// Close closes the underlying producer
func (p *KafkaEventPublisher) Close() error {
	p.producer.Close()
	return nil
}

// NoOpEventPublisher drops every event. Used when Kafka is disabled.
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// Publish is a no-op
func (p *NoOpEventPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
