package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a traveler's rating of a completed booking
type Review struct {
	ID           string    `json:"id"`
	BookingID    string    `json:"booking_id"`
	ExperienceID string    `json:"experience_id"`
	TravelerID   string    `json:"traveler_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	IsVisible    bool      `json:"is_visible"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewReview validates a review of booking by travelerID
func NewReview(booking *Booking, travelerID string, rating int, comment string, now time.Time) (*Review, error) {
	if !booking.BelongsToTraveler(travelerID) {
		return nil, ErrBookingAccessDenied
	}
	if booking.Status != BookingStatusCompleted {
		return nil, ErrBookingNotCompleted
	}
	if rating < MinRating || rating > MaxRating {
		return nil, ErrInvalidRating
	}

	return &Review{
		ID:           uuid.NewString(),
		BookingID:    booking.ID,
		ExperienceID: booking.ExperienceID,
		TravelerID:   travelerID,
		Rating:       rating,
		Comment:      strings.TrimSpace(comment),
		IsVisible:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// RatingSummary aggregates visible reviews of one experience
type RatingSummary struct {
	ExperienceID  string  `json:"experience_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}
