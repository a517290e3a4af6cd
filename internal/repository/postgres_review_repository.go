package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
)

// PostgresReviewRepository implements ReviewRepository using PostgreSQL
type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReviewRepository creates a new PostgresReviewRepository
func NewPostgresReviewRepository(pool *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{pool: pool}
}

const reviewColumns = `id, booking_id, experience_id, traveler_id, rating,
	COALESCE(comment, '') AS comment, is_visible, created_at, updated_at`

func scanReview(row pgx.Row) (*domain.Review, error) {
	review := &domain.Review{}
	err := row.Scan(
		&review.ID,
		&review.BookingID,
		&review.ExperienceID,
		&review.TravelerID,
		&review.Rating,
		&review.Comment,
		&review.IsVisible,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}

// Create inserts a review
func (r *PostgresReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, booking_id, experience_id, traveler_id, rating, comment, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.BookingID,
		review.ExperienceID,
		review.TravelerID,
		review.Rating,
		review.Comment,
		review.IsVisible,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domain.ErrReviewExists
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// GetByID retrieves a review by ID
func (r *PostgresReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	if !isUUID(id) {
		return nil, domain.ErrReviewNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)
	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// ListByExperience lists reviews of an experience, newest first
func (r *PostgresReviewRepository) ListByExperience(ctx context.Context, experienceID string, visibleOnly bool, limit, offset int) ([]*domain.Review, int, error) {
	where := &whereClause{}
	where.addID("experience_id = $%d", experienceID)
	if visibleOnly {
		where.addRaw("is_visible = TRUE")
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM reviews WHERE %s", where), where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	paging, args := where.page(limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE %s ORDER BY created_at DESC %s`, reviewColumns, where, paging)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	return reviews, total, rows.Err()
}

// Summary aggregates visible reviews of an experience
func (r *PostgresReviewRepository) Summary(ctx context.Context, experienceID string) (*domain.RatingSummary, error) {
	summary := &domain.RatingSummary{ExperienceID: experienceID}
	if !isUUID(experienceID) {
		return summary, nil
	}
	query := `
		SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
		FROM reviews
		WHERE experience_id = $1 AND is_visible = TRUE
	`
	if err := r.pool.QueryRow(ctx, query, experienceID).Scan(&summary.AverageRating, &summary.ReviewCount); err != nil {
		return nil, fmt.Errorf("failed to summarize reviews: %w", err)
	}
	return summary, nil
}

// SetVisibility shows or hides a review
func (r *PostgresReviewRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	if !isUUID(id) {
		return domain.ErrReviewNotFound
	}
	result, err := r.pool.Exec(ctx, `UPDATE reviews SET is_visible = $2, updated_at = NOW() WHERE id = $1`, id, visible)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}
