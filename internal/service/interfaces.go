package service

import (
	"context"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/dto"
)

// ExperienceService defines the interface for experience business logic
type ExperienceService interface {
	// CreateExperience creates a draft experience owned by req.HostID
	CreateExperience(ctx context.Context, req *dto.CreateExperienceRequest) (*domain.Experience, error)
	// GetExperience retrieves an experience. Unpublished experiences are
	// only visible to their host and to admins; viewer is nil for anonymous callers.
	GetExperience(ctx context.Context, id string, viewer *domain.Actor) (*domain.Experience, error)
	// ListPublished lists experiences open for booking
	ListPublished(ctx context.Context, filter *dto.ExperienceListFilter) ([]*domain.Experience, int, error)
	// ListByHost lists the experiences of one host in any status
	ListByHost(ctx context.Context, hostID string, filter *dto.ExperienceListFilter) ([]*domain.Experience, int, error)
	// ListAll lists experiences in any status for back-office review
	ListAll(ctx context.Context, filter *dto.ExperienceListFilter) ([]*domain.Experience, int, error)
	// UpdateExperience updates the editable fields of an experience
	UpdateExperience(ctx context.Context, actor domain.Actor, id string, req *dto.UpdateExperienceRequest) (*domain.Experience, error)
	// ApplyAction runs a lifecycle action and persists the new status
	ApplyAction(ctx context.Context, actor domain.Actor, id string, action domain.Action, reason string) (*domain.Experience, error)
}

// BookingService defines the interface for booking business logic
type BookingService interface {
	// QuoteBooking prices a booking without saving it
	QuoteBooking(ctx context.Context, req *dto.QuoteRequest) (*domain.Quote, error)
	// CreateBooking books a published experience with a pending payment
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*domain.Booking, error)
	// GetBooking retrieves a booking visible to actor
	GetBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error)
	// ListBookings lists bookings with filters and pagination
	ListBookings(ctx context.Context, filter *dto.BookingListFilter) ([]*domain.Booking, int, error)
	// CancelBooking cancels a pending or confirmed booking
	CancelBooking(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Booking, error)
	// AdvanceBooking confirms, starts or completes a booking on behalf of its host
	AdvanceBooking(ctx context.Context, actor domain.Actor, id string, action domain.BookingAction) (*domain.Booking, error)
}

// ReviewService defines the interface for review business logic
type ReviewService interface {
	// CreateReview reviews a completed booking
	CreateReview(ctx context.Context, req *dto.CreateReviewRequest) (*domain.Review, error)
	// ListExperienceReviews lists visible reviews with the rating summary
	ListExperienceReviews(ctx context.Context, experienceID string, page *dto.Pagination) ([]*domain.Review, int, *domain.RatingSummary, error)
	// SetReviewVisibility shows or hides a review
	SetReviewVisibility(ctx context.Context, id string, visible bool) (*domain.Review, error)
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	// ListCategories lists categories, inactive ones included when all is set
	ListCategories(ctx context.Context, all bool) ([]*domain.ExperienceCategory, error)
	// CreateCategory creates an active category
	CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*domain.ExperienceCategory, error)
}
