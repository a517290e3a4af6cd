package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionBooking(t *testing.T) {
	tests := []struct {
		action  BookingAction
		from    BookingStatus
		want    BookingStatus
		wantErr bool
	}{
		{BookingActionConfirm, BookingStatusPending, BookingStatusConfirmed, false},
		{BookingActionConfirm, BookingStatusConfirmed, BookingStatusConfirmed, true},
		{BookingActionStart, BookingStatusConfirmed, BookingStatusInProgress, false},
		{BookingActionStart, BookingStatusPending, BookingStatusPending, true},
		{BookingActionComplete, BookingStatusInProgress, BookingStatusCompleted, false},
		{BookingActionComplete, BookingStatusConfirmed, BookingStatusConfirmed, true},
		{BookingActionCancel, BookingStatusPending, BookingStatusCancelled, false},
		{BookingActionCancel, BookingStatusConfirmed, BookingStatusCancelled, false},
		{BookingActionCancel, BookingStatusInProgress, BookingStatusInProgress, true},
		{BookingActionCancel, BookingStatusCompleted, BookingStatusCompleted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"_from_"+string(tt.from), func(t *testing.T) {
			got, err := TransitionBooking(tt.from, tt.action)
			if (err != nil) != tt.wantErr {
				t.Fatalf("TransitionBooking() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("TransitionBooking() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBookingStatus_IsActive(t *testing.T) {
	tests := map[BookingStatus]bool{
		BookingStatusPending:    true,
		BookingStatusConfirmed:  true,
		BookingStatusInProgress: true,
		BookingStatusCompleted:  false,
		BookingStatusCancelled:  false,
	}
	for status, want := range tests {
		assert.Equal(t, want, status.IsActive(), status)
	}
}

func TestBooking_Apply(t *testing.T) {
	now := time.Now()
	b := &Booking{Status: BookingStatusPending}

	require.NoError(t, b.Apply(BookingActionConfirm, "", now))
	assert.Equal(t, BookingStatusConfirmed, b.Status)
	assert.Equal(t, &now, b.ConfirmedAt)

	require.NoError(t, b.Apply(BookingActionCancel, " weather ", now))
	assert.Equal(t, BookingStatusCancelled, b.Status)
	assert.Equal(t, "weather", b.CancellationReason)
	assert.Equal(t, &now, b.CancelledAt)

	err := b.Apply(BookingActionStart, "", now)
	assert.True(t, IsTransitionError(err))
	assert.Equal(t, BookingStatusCancelled, b.Status)
}

func TestBooking_Ownership(t *testing.T) {
	traveler := "user-1"
	member := &Booking{TravelerID: &traveler}
	guest := &Booking{GuestEmail: "guest@example.com"}

	assert.False(t, member.IsGuest())
	assert.True(t, member.BelongsToTraveler("user-1"))
	assert.False(t, member.BelongsToTraveler("user-2"))

	assert.True(t, guest.IsGuest())
	assert.False(t, guest.BelongsToTraveler(""))
}

func TestNewBookingReference(t *testing.T) {
	pattern := regexp.MustCompile(`^BK-[0-9A-F]{10}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := NewBookingReference()
		if !pattern.MatchString(ref) {
			t.Fatalf("unexpected reference format %q", ref)
		}
		seen[ref] = true
	}
	assert.Len(t, seen, 100)
}

func TestNewPendingPayment(t *testing.T) {
	now := time.Now()
	b := &Booking{ID: "b-1", TotalPrice: 450000, Currency: "IDR"}

	p := NewPendingPayment(b, now)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "b-1", p.BookingID)
	assert.Equal(t, float64(450000), p.Amount)
	assert.Equal(t, PaymentStatusPending, p.Status)
}
