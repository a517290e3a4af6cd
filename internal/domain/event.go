package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a domain event published to the message bus
type EventType string

const (
	EventExperienceStatusChanged EventType = "experience.status_changed"
	EventBookingCreated          EventType = "booking.created"
	EventBookingStatusChanged    EventType = "booking.status_changed"
)

// DomainEvent is the envelope of every published event
type DomainEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Data        any       `json:"data"`
}

// ExperienceStatusChanged is the payload of EventExperienceStatusChanged
type ExperienceStatusChanged struct {
	ExperienceID string           `json:"experience_id"`
	HostID       string           `json:"host_id"`
	Action       Action           `json:"action"`
	From         ExperienceStatus `json:"from"`
	To           ExperienceStatus `json:"to"`
	Reason       string           `json:"reason,omitempty"`
	ActorID      string           `json:"actor_id"`
}

// BookingStatusChanged is the payload of EventBookingStatusChanged
type BookingStatusChanged struct {
	BookingID    string        `json:"booking_id"`
	ExperienceID string        `json:"experience_id"`
	Action       BookingAction `json:"action"`
	From         BookingStatus `json:"from"`
	To           BookingStatus `json:"to"`
	ActorID      string        `json:"actor_id"`
}

// NewDomainEvent wraps data in an envelope keyed by aggregateID
func NewDomainEvent(eventType EventType, aggregateID string, data any) *DomainEvent {
	return &DomainEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Data:        data,
	}
}

// Key is the partition key of the event
func (e *DomainEvent) Key() string {
	return e.AggregateID
}
