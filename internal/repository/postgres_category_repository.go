package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
)

// PostgresCategoryRepository implements CategoryRepository using PostgreSQL
type PostgresCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCategoryRepository creates a new PostgresCategoryRepository
func NewPostgresCategoryRepository(pool *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

const categoryColumns = `id, slug, name, COALESCE(description, '') AS description, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (*domain.ExperienceCategory, error) {
	c := &domain.ExperienceCategory{}
	if err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a category
func (r *PostgresCategoryRepository) Create(ctx context.Context, category *domain.ExperienceCategory) error {
	query := `
		INSERT INTO categories (id, slug, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		category.ID,
		category.Slug,
		category.Name,
		category.Description,
		category.IsActive,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domain.ErrCategoryExists
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by ID
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*domain.ExperienceCategory, error) {
	if !isUUID(id) {
		return nil, domain.ErrCategoryNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1`, categoryColumns)
	c, err := scanCategory(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// List lists categories ordered by name
func (r *PostgresCategoryRepository) List(ctx context.Context, activeOnly bool) ([]*domain.ExperienceCategory, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories`, categoryColumns)
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.ExperienceCategory, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
