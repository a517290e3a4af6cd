package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/dto"
	"github.com/prohmpiriya/experience-marketplace/internal/metrics"
	"github.com/prohmpiriya/experience-marketplace/internal/repository"
	"github.com/prohmpiriya/experience-marketplace/pkg/telemetry"
)

// reviewService implements ReviewService
type reviewService struct {
	reviewRepo     repository.ReviewRepository
	bookingRepo    repository.BookingRepository
	experienceRepo repository.ExperienceRepository
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	bookingRepo repository.BookingRepository,
	experienceRepo repository.ExperienceRepository,
) ReviewService {
	return &reviewService{
		reviewRepo:     reviewRepo,
		bookingRepo:    bookingRepo,
		experienceRepo: experienceRepo,
	}
}

// CreateReview reviews a completed booking of the caller
func (s *reviewService) CreateReview(ctx context.Context, req *dto.CreateReviewRequest) (*domain.Review, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.review.create")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}
	span.SetAttributes(attribute.String("booking_id", req.BookingID))

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	review, err := domain.NewReview(booking, req.TravelerID, req.Rating, req.Comment, time.Now().UTC())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordReviewCreated(ctx, booking.Category.String(), review.Rating)
	span.SetAttributes(
		attribute.String("review_id", review.ID),
		attribute.String("experience_id", review.ExperienceID),
		attribute.Int("rating", review.Rating),
	)
	span.SetStatus(codes.Ok, "")
	return review, nil
}

// ListExperienceReviews lists visible reviews with the rating summary.
// Reviews of listings that are not published are not served.
func (s *reviewService) ListExperienceReviews(ctx context.Context, experienceID string, page *dto.Pagination) ([]*domain.Review, int, *domain.RatingSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.review.list")
	defer span.End()
	span.SetAttributes(attribute.String("experience_id", experienceID))

	exp, err := s.experienceRepo.GetByID(ctx, experienceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, nil, err
	}
	if !exp.CanBeBooked() {
		span.SetStatus(codes.Error, "experience not published")
		return nil, 0, nil, domain.ErrExperienceNotFound
	}

	page.SetDefaults()

	reviews, total, err := s.reviewRepo.ListByExperience(ctx, experienceID, true, page.Limit, page.Offset())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, nil, err
	}

	summary, err := s.reviewRepo.Summary(ctx, experienceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, nil, err
	}

	span.SetAttributes(attribute.Int("count", len(reviews)))
	span.SetStatus(codes.Ok, "")
	return reviews, total, summary, nil
}

// SetReviewVisibility shows or hides a review
func (s *reviewService) SetReviewVisibility(ctx context.Context, id string, visible bool) (*domain.Review, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.review.set_visibility")
	defer span.End()
	span.SetAttributes(attribute.String("review_id", id), attribute.Bool("visible", visible))

	if err := s.reviewRepo.SetVisibility(ctx, id, visible); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordReviewModeration(ctx, visible)
	span.SetStatus(codes.Ok, "")
	return review, nil
}
