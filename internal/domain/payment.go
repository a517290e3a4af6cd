package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment is the charge attached to a booking
type Payment struct {
	ID        string        `json:"id"`
	BookingID string        `json:"booking_id"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Status    PaymentStatus `json:"status"`
	Provider  string        `json:"provider,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewPendingPayment creates the unpaid charge for a new booking
func NewPendingPayment(b *Booking, now time.Time) *Payment {
	return &Payment{
		ID:        uuid.NewString(),
		BookingID: b.ID,
		Amount:    b.TotalPrice,
		Currency:  b.Currency,
		Status:    PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
