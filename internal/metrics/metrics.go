package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/prohmpiriya/experience-marketplace/pkg/telemetry"
)

var (
	// Booking counters
	BookingsCreated       *telemetry.Counter
	BookingStatusChanges  *telemetry.Counter
	BookingCreateFailures *telemetry.Counter

	// Experience counters
	ExperienceTransitions *telemetry.Counter

	// Review counters
	ReviewsCreated    *telemetry.Counter
	ReviewModerations *telemetry.Counter

	// Histograms
	BookingAmount *telemetry.Histogram
	ReviewRating  *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all marketplace metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	BookingsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "bookings_created_total",
		Description: "Total number of bookings created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingStatusChanges, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_status_changes_total",
		Description: "Total number of booking status changes",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingCreateFailures, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_create_failures_total",
		Description: "Total number of rejected or failed booking attempts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ExperienceTransitions, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "experience_transitions_total",
		Description: "Total number of experience lifecycle transitions",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReviewsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reviews_created_total",
		Description: "Total number of reviews created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReviewModerations, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "review_moderations_total",
		Description: "Total number of review visibility changes",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingAmount, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "booking_amount",
		Description: "Total price of created bookings",
		Unit:        "{currency}",
	})
	if err != nil {
		return err
	}

	ReviewRating, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "review_rating",
		Description: "Star rating of created reviews",
		Unit:        "1",
	})
	return err
}

// RecordBookingCreated counts a created booking and its amount
func RecordBookingCreated(ctx context.Context, category, currency string, amount float64) {
	attrs := []attribute.KeyValue{
		attribute.String("category", category),
		attribute.String("currency", currency),
	}
	if BookingsCreated != nil {
		BookingsCreated.Inc(ctx, attrs...)
	}
	if BookingAmount != nil {
		BookingAmount.Record(ctx, amount, attrs...)
	}
}

// RecordBookingFailure counts a booking attempt that did not persist
func RecordBookingFailure(ctx context.Context, reason string) {
	if BookingCreateFailures != nil {
		BookingCreateFailures.Inc(ctx, attribute.String("reason", reason))
	}
}

// RecordBookingStatusChange counts a booking status action
func RecordBookingStatusChange(ctx context.Context, action, to string) {
	if BookingStatusChanges != nil {
		BookingStatusChanges.Inc(ctx, attribute.String("action", action), attribute.String("to", to))
	}
}

// RecordExperienceTransition counts an experience lifecycle action
func RecordExperienceTransition(ctx context.Context, action, from, to string) {
	if ExperienceTransitions != nil {
		ExperienceTransitions.Inc(ctx,
			attribute.String("action", action),
			attribute.String("from", from),
			attribute.String("to", to),
		)
	}
}

// RecordReviewCreated counts a review and its rating
func RecordReviewCreated(ctx context.Context, category string, rating int) {
	attr := attribute.String("category", category)
	if ReviewsCreated != nil {
		ReviewsCreated.Inc(ctx, attr)
	}
	if ReviewRating != nil {
		ReviewRating.Record(ctx, float64(rating), attr)
	}
}

// RecordReviewModeration counts an admin hiding or restoring a review
func RecordReviewModeration(ctx context.Context, visible bool) {
	if ReviewModerations != nil {
		ReviewModerations.Inc(ctx, attribute.Bool("visible", visible))
	}
}
