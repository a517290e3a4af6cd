package dto

import (
	"strings"
	"time"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
)

// BookingDateLayout is the wire format of booking dates
const BookingDateLayout = "2006-01-02"

// CreateBookingRequest represents the request to book an experience
type CreateBookingRequest struct {
	ExperienceID     string                `json:"experience_id" binding:"required"`
	BookingDate      string                `json:"booking_date" binding:"required"`
	StartTime        string                `json:"start_time"`
	ParticipantCount int                   `json:"participant_count" binding:"required,min=1"`
	GuestName        string                `json:"guest_name" binding:"max=255"`
	GuestEmail       string                `json:"guest_email" binding:"omitempty,email,max=255"`
	GuestPhone       string                `json:"guest_phone" binding:"max=50"`
	SpecialRequests  string                `json:"special_requests" binding:"max=2000"`
	CategoryDetails  domain.BookingDetails `json:"category_details"`
	TravelerID       *string               `json:"-"` // Set from context, nil for guests
	IdempotencyKey   string                `json:"-"` // Set from the X-Idempotency-Key header
}

// Validate validates the CreateBookingRequest against the current time
func (r *CreateBookingRequest) Validate(now time.Time) (bool, string) {
	if r.ExperienceID == "" {
		return false, "Experience ID is required"
	}
	if r.ParticipantCount < 1 {
		return false, "Participant count must be at least 1"
	}
	date, err := r.ParsedBookingDate()
	if err != nil {
		return false, "Booking date must use YYYY-MM-DD"
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return false, "Booking date must not be in the past"
	}
	if r.StartTime != "" {
		if _, err := time.Parse("15:04", r.StartTime); err != nil {
			return false, "Start time must use HH:MM"
		}
	}
	if r.TravelerID == nil {
		if strings.TrimSpace(r.GuestName) == "" || strings.TrimSpace(r.GuestEmail) == "" {
			return false, "Guest name and email are required"
		}
	}
	return true, ""
}

// ParsedBookingDate returns BookingDate as a UTC date
func (r *CreateBookingRequest) ParsedBookingDate() (time.Time, error) {
	return time.Parse(BookingDateLayout, r.BookingDate)
}

// QuoteRequest asks for the price and payload of a booking without saving it
type QuoteRequest struct {
	ExperienceID     string                `json:"experience_id" binding:"required"`
	ParticipantCount int                   `json:"participant_count"`
	CategoryDetails  domain.BookingDetails `json:"category_details"`
}

// QuoteResponse is the engine output for a QuoteRequest
type QuoteResponse struct {
	ExperienceID         string                 `json:"experience_id"`
	Category             string                 `json:"category"`
	TotalPrice           float64                `json:"total_price"`
	Currency             string                 `json:"currency"`
	CategorySpecificData domain.CategoryDetails `json:"category_specific_data"`
}

// CancelBookingRequest carries the optional cancellation reason
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// BookingResponse represents the response for a booking
type BookingResponse struct {
	ID                   string                 `json:"id"`
	Reference            string                 `json:"reference"`
	ExperienceID         string                 `json:"experience_id"`
	TravelerID           *string                `json:"traveler_id,omitempty"`
	GuestName            string                 `json:"guest_name,omitempty"`
	GuestEmail           string                 `json:"guest_email,omitempty"`
	GuestPhone           string                 `json:"guest_phone,omitempty"`
	BookingDate          string                 `json:"booking_date"`
	StartTime            string                 `json:"start_time,omitempty"`
	ParticipantCount     int                    `json:"participant_count"`
	TotalPrice           float64                `json:"total_price"`
	Currency             string                 `json:"currency"`
	Status               string                 `json:"status"`
	Category             string                 `json:"category"`
	CategorySpecificData domain.CategoryDetails `json:"category_specific_data"`
	SpecialRequests      string                 `json:"special_requests,omitempty"`
	CancellationReason   string                 `json:"cancellation_reason,omitempty"`
	ConfirmedAt          *string                `json:"confirmed_at,omitempty"`
	CancelledAt          *string                `json:"cancelled_at,omitempty"`
	CompletedAt          *string                `json:"completed_at,omitempty"`
	CreatedAt            string                 `json:"created_at"`
	UpdatedAt            string                 `json:"updated_at"`
}

// BookingListFilter represents filters for listing bookings
type BookingListFilter struct {
	Pagination
	Status       string `form:"status"`
	ExperienceID string `form:"experience_id"`
	TravelerID   string `form:"-"`
	HostID       string `form:"-"`
}

// Validate validates the BookingListFilter
func (f *BookingListFilter) Validate() (bool, string) {
	if f.Status != "" && !domain.BookingStatus(f.Status).IsValid() {
		return false, "Unknown booking status"
	}
	return true, ""
}
