package repository

import (
	"context"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
)

// ExperienceRepository defines the interface for experience data access.
// Soft-deleted experiences are invisible to every read.
type ExperienceRepository interface {
	// Create inserts a new experience
	Create(ctx context.Context, exp *domain.Experience) error
	// GetByID retrieves an experience by ID
	GetByID(ctx context.Context, id string) (*domain.Experience, error)
	// Update persists the editable fields and the lifecycle fields
	Update(ctx context.Context, exp *domain.Experience) error
	// List lists experiences with filters and pagination
	List(ctx context.Context, filter *ExperienceFilter, limit, offset int) ([]*domain.Experience, int, error)
	// SlugExists checks if a slug is already taken
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// ExperienceFilter contains filter options for listing experiences
type ExperienceFilter struct {
	Status       domain.ExperienceStatus
	CategoryID   string
	CategorySlug string
	HostID       string
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
}

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	// CreateWithPayment inserts a booking and its pending payment atomically
	CreateWithPayment(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error
	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// List lists bookings with filters and pagination
	List(ctx context.Context, filter *BookingFilter, limit, offset int) ([]*domain.Booking, int, error)
	// UpdateStatus persists the status fields of a booking
	UpdateStatus(ctx context.Context, booking *domain.Booking) error
	// CountActiveByExperience counts bookings in an active status
	CountActiveByExperience(ctx context.Context, experienceID string) (int, error)
}

// BookingFilter contains filter options for listing bookings
type BookingFilter struct {
	Status       domain.BookingStatus
	ExperienceID string
	TravelerID   string
	// HostID matches bookings of experiences owned by the host
	HostID string
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// Create inserts a review; a second review of the same booking fails
	Create(ctx context.Context, review *domain.Review) error
	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	// ListByExperience lists reviews of an experience, newest first
	ListByExperience(ctx context.Context, experienceID string, visibleOnly bool, limit, offset int) ([]*domain.Review, int, error)
	// Summary aggregates visible reviews of an experience
	Summary(ctx context.Context, experienceID string) (*domain.RatingSummary, error)
	// SetVisibility shows or hides a review
	SetVisibility(ctx context.Context, id string, visible bool) error
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// Create inserts a category
	Create(ctx context.Context, category *domain.ExperienceCategory) error
	// GetByID retrieves a category by ID
	GetByID(ctx context.Context, id string) (*domain.ExperienceCategory, error)
	// List lists categories ordered by name
	List(ctx context.Context, activeOnly bool) ([]*domain.ExperienceCategory, error)
}
