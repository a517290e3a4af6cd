package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
)

// PostgresExperienceRepository implements ExperienceRepository using PostgreSQL
type PostgresExperienceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresExperienceRepository creates a new PostgresExperienceRepository
func NewPostgresExperienceRepository(pool *pgxpool.Pool) *PostgresExperienceRepository {
	return &PostgresExperienceRepository{pool: pool}
}

// experienceColumns selects an experience joined with its category slug.
// COALESCE keeps nullable text columns scannable into plain strings.
const experienceColumns = `e.id, e.host_id, e.category_id, c.slug, e.title, e.slug,
	COALESCE(e.description, '') AS description,
	COALESCE(e.location, '') AS location,
	e.price_per_package, e.currency, e.min_participants, e.max_participants,
	e.duration_minutes, e.status,
	COALESCE(e.rejection_reason, '') AS rejection_reason, e.rejected_at,
	COALESCE(e.suspension_reason, '') AS suspension_reason, e.suspended_at,
	e.published_at, e.created_at, e.updated_at, e.deleted_at`

const experienceFrom = `experiences e JOIN categories c ON c.id = e.category_id`

func scanExperience(row pgx.Row) (*domain.Experience, error) {
	exp := &domain.Experience{}
	err := row.Scan(
		&exp.ID,
		&exp.HostID,
		&exp.CategoryID,
		&exp.CategorySlug,
		&exp.Title,
		&exp.Slug,
		&exp.Description,
		&exp.Location,
		&exp.PricePerPackage,
		&exp.Currency,
		&exp.MinParticipants,
		&exp.MaxParticipants,
		&exp.DurationMinutes,
		&exp.Status,
		&exp.RejectionReason,
		&exp.RejectedAt,
		&exp.SuspensionReason,
		&exp.SuspendedAt,
		&exp.PublishedAt,
		&exp.CreatedAt,
		&exp.UpdatedAt,
		&exp.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// Create inserts a new experience
func (r *PostgresExperienceRepository) Create(ctx context.Context, exp *domain.Experience) error {
	query := `
		INSERT INTO experiences (
			id, host_id, category_id, title, slug, description, location,
			price_per_package, currency, min_participants, max_participants,
			duration_minutes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.pool.Exec(ctx, query,
		exp.ID,
		exp.HostID,
		exp.CategoryID,
		exp.Title,
		exp.Slug,
		exp.Description,
		exp.Location,
		exp.PricePerPackage,
		exp.Currency,
		exp.MinParticipants,
		exp.MaxParticipants,
		exp.DurationMinutes,
		exp.Status,
		exp.CreatedAt,
		exp.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return domain.ErrCategoryNotFound
		}
		if isPgError(err, pgUniqueViolation) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("failed to insert experience: %w", err)
	}
	return nil
}

// GetByID retrieves an experience by ID
func (r *PostgresExperienceRepository) GetByID(ctx context.Context, id string) (*domain.Experience, error) {
	if !isUUID(id) {
		return nil, domain.ErrExperienceNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE e.id = $1 AND e.deleted_at IS NULL`, experienceColumns, experienceFrom)

	exp, err := scanExperience(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExperienceNotFound
		}
		return nil, fmt.Errorf("failed to get experience: %w", err)
	}
	return exp, nil
}

// Update persists the editable fields and the lifecycle fields. A
// soft-deleted row cannot be updated again.
func (r *PostgresExperienceRepository) Update(ctx context.Context, exp *domain.Experience) error {
	if !isUUID(exp.ID) {
		return domain.ErrExperienceNotFound
	}
	query := `
		UPDATE experiences SET
			category_id = $2, title = $3, description = $4, location = $5,
			price_per_package = $6, currency = $7, min_participants = $8,
			max_participants = $9, duration_minutes = $10, status = $11,
			rejection_reason = NULLIF($12, ''), rejected_at = $13,
			suspension_reason = NULLIF($14, ''), suspended_at = $15,
			published_at = $16, updated_at = $17, deleted_at = $18
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query,
		exp.ID,
		exp.CategoryID,
		exp.Title,
		exp.Description,
		exp.Location,
		exp.PricePerPackage,
		exp.Currency,
		exp.MinParticipants,
		exp.MaxParticipants,
		exp.DurationMinutes,
		exp.Status,
		exp.RejectionReason,
		exp.RejectedAt,
		exp.SuspensionReason,
		exp.SuspendedAt,
		exp.PublishedAt,
		exp.UpdatedAt,
		exp.DeletedAt,
	)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return domain.ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update experience: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrExperienceNotFound
	}
	return nil
}

// List lists experiences with filters and pagination, newest first
func (r *PostgresExperienceRepository) List(ctx context.Context, filter *ExperienceFilter, limit, offset int) ([]*domain.Experience, int, error) {
	where := &whereClause{}
	where.addRaw("e.deleted_at IS NULL")

	if filter != nil {
		if filter.Status != "" {
			where.add("e.status = $%d", filter.Status)
		}
		if filter.CategoryID != "" {
			where.addID("e.category_id = $%d", filter.CategoryID)
		}
		if filter.CategorySlug != "" {
			where.add("c.slug = $%d", filter.CategorySlug)
		}
		if filter.HostID != "" {
			where.addID("e.host_id = $%d", filter.HostID)
		}
		if filter.Search != "" {
			where.add("(e.title ILIKE $%[1]d OR e.description ILIKE $%[1]d OR e.location ILIKE $%[1]d)", "%"+filter.Search+"%")
		}
		if filter.MinPrice != nil {
			where.add("e.price_per_package >= $%d", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			where.add("e.price_per_package <= $%d", *filter.MaxPrice)
		}
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", experienceFrom, where)
	if err := r.pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count experiences: %w", err)
	}

	paging, args := where.page(limit, offset)
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY e.created_at DESC
		%s
	`, experienceColumns, experienceFrom, where, paging)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list experiences: %w", err)
	}
	defer rows.Close()

	experiences := make([]*domain.Experience, 0)
	for rows.Next() {
		exp, err := scanExperience(rows)
		if err != nil {
			return nil, 0, err
		}
		experiences = append(experiences, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return experiences, total, nil
}

// SlugExists checks if a slug is already taken. Slugs of deleted
// experiences stay reserved.
func (r *PostgresExperienceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM experiences WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}
