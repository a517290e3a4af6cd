package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBeforeInit(t *testing.T) {
	// helpers must be safe when Init was never called
	assert.NotPanics(t, func() {
		RecordBookingCreated(context.Background(), "guide", "IDR", 300)
		RecordExperienceTransition(context.Background(), "publish", "draft", "published")
		RecordReviewCreated(context.Background(), "guide", 5)
	})
}

func TestInit(t *testing.T) {
	require.NoError(t, Init())
	require.NoError(t, Init())

	assert.NotNil(t, BookingsCreated)
	assert.NotNil(t, ExperienceTransitions)
	assert.NotNil(t, BookingAmount)
	assert.NotNil(t, ReviewsCreated)
	assert.NotNil(t, ReviewRating)

	assert.NotPanics(t, func() {
		ctx := context.Background()
		RecordBookingCreated(ctx, "photographer", "IDR", 400)
		RecordBookingFailure(ctx, "not_bookable")
		RecordBookingStatusChange(ctx, "confirm", "confirmed")
		RecordExperienceTransition(ctx, "pause", "published", "paused")
		RecordReviewCreated(ctx, "combo", 4)
		RecordReviewModeration(ctx, false)
	})
}
