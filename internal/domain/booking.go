package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// ActiveBookingStatuses block deletion of the booked experience
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
}

// IsValid checks if the status is a known BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the status blocks experience deletion
func (s BookingStatus) IsActive() bool {
	return slices.Contains(ActiveBookingStatuses, s)
}

func (s BookingStatus) String() string {
	return string(s)
}

// BookingAction is a status operation on a booking
type BookingAction string

const (
	BookingActionConfirm  BookingAction = "confirm"
	BookingActionStart    BookingAction = "start"
	BookingActionComplete BookingAction = "complete"
	BookingActionCancel   BookingAction = "cancel"
)

var bookingTransitions = map[BookingAction]struct {
	from []BookingStatus
	to   BookingStatus
}{
	BookingActionConfirm:  {from: []BookingStatus{BookingStatusPending}, to: BookingStatusConfirmed},
	BookingActionStart:    {from: []BookingStatus{BookingStatusConfirmed}, to: BookingStatusInProgress},
	BookingActionComplete: {from: []BookingStatus{BookingStatusInProgress}, to: BookingStatusCompleted},
	BookingActionCancel:   {from: []BookingStatus{BookingStatusPending, BookingStatusConfirmed}, to: BookingStatusCancelled},
}

// TransitionBooking returns the status reached by applying action to current
func TransitionBooking(current BookingStatus, action BookingAction) (BookingStatus, error) {
	rule, ok := bookingTransitions[action]
	if !ok {
		return current, ErrUnknownAction
	}
	if !slices.Contains(rule.from, current) {
		return current, &TransitionError{Action: string(action), From: string(current)}
	}
	return rule.to, nil
}

// Booking represents a reservation against one experience
type Booking struct {
	ID               string        `json:"id"`
	Reference        string        `json:"reference"`
	ExperienceID     string        `json:"experience_id"`
	TravelerID       *string       `json:"traveler_id,omitempty"`
	GuestName        string        `json:"guest_name,omitempty"`
	GuestEmail       string        `json:"guest_email,omitempty"`
	GuestPhone       string        `json:"guest_phone,omitempty"`
	BookingDate      time.Time     `json:"booking_date"`
	StartTime        string        `json:"start_time,omitempty"`
	ParticipantCount int           `json:"participant_count"`
	TotalPrice       float64       `json:"total_price"`
	Currency         string        `json:"currency"`
	Status           BookingStatus `json:"status"`
	Category         Category      `json:"category"`

	// Derived once at creation and never recomputed
	CategoryDetails    CategoryDetails `json:"category_specific_data"`
	SpecialRequests    string          `json:"special_requests,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	ConfirmedAt        *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewBookingReference returns a short human-readable booking code
func NewBookingReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(id[:10])
}

// IsGuest reports whether the booking was made without an account
func (b *Booking) IsGuest() bool {
	return b.TravelerID == nil
}

// BelongsToTraveler checks if the booking was made by userID
func (b *Booking) BelongsToTraveler(userID string) bool {
	return b.TravelerID != nil && *b.TravelerID == userID
}

// Apply moves the booking through action and stamps the matching
// timestamp. Status is left unchanged when an error is returned.
func (b *Booking) Apply(action BookingAction, reason string, now time.Time) error {
	next, err := TransitionBooking(b.Status, action)
	if err != nil {
		return err
	}

	switch action {
	case BookingActionConfirm:
		b.ConfirmedAt = &now
	case BookingActionComplete:
		b.CompletedAt = &now
	case BookingActionCancel:
		b.CancelledAt = &now
		b.CancellationReason = strings.TrimSpace(reason)
	}

	b.Status = next
	b.UpdatedAt = now
	return nil
}
