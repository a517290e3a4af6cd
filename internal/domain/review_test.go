package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	traveler := "user-1"
	completed := func() *Booking {
		return &Booking{ID: "b-1", ExperienceID: "exp-1", TravelerID: &traveler, Status: BookingStatusCompleted}
	}

	tests := []struct {
		name       string
		booking    func() *Booking
		travelerID string
		rating     int
		wantErr    error
	}{
		{"valid", completed, "user-1", 5, nil},
		{"someone else's booking", completed, "user-2", 4, ErrBookingAccessDenied},
		{"not completed", func() *Booking { b := completed(); b.Status = BookingStatusConfirmed; return b }, "user-1", 4, ErrBookingNotCompleted},
		{"rating too low", completed, "user-1", 0, ErrInvalidRating},
		{"rating too high", completed, "user-1", 6, ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReview(tt.booking(), tt.travelerID, tt.rating, " great ", time.Now())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "exp-1", r.ExperienceID)
			assert.Equal(t, "great", r.Comment)
			assert.True(t, r.IsVisible)
		})
	}
}

func TestNewDomainEvent(t *testing.T) {
	ev := NewDomainEvent(EventBookingCreated, "b-1", map[string]string{"k": "v"})
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "b-1", ev.Key())
	assert.Equal(t, EventBookingCreated, ev.Type)
}
