package repository

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	rediscache "github.com/prohmpiriya/experience-marketplace/pkg/redis"
)

const (
	experienceDetailKeyPrefix = "experience:detail:"
	experienceListKeyPrefix   = "experience:list:"

	defaultExperienceCacheTTL = 5 * time.Minute
)

// CachedExperienceRepository wraps ExperienceRepository with a Redis
// read-through cache. Cache failures fall back to the wrapped repository.
type CachedExperienceRepository struct {
	repo  ExperienceRepository
	cache goredis.Cmdable
	ttl   time.Duration
}

type cachedExperienceList struct {
	Experiences []*domain.Experience `json:"experiences"`
	Total       int                  `json:"total"`
}

// NewCachedExperienceRepository creates a new CachedExperienceRepository
func NewCachedExperienceRepository(repo ExperienceRepository, cache goredis.Cmdable, ttl time.Duration) *CachedExperienceRepository {
	if ttl <= 0 {
		ttl = defaultExperienceCacheTTL
	}
	return &CachedExperienceRepository{repo: repo, cache: cache, ttl: ttl}
}

// Create creates an experience and invalidates list caches
func (r *CachedExperienceRepository) Create(ctx context.Context, exp *domain.Experience) error {
	if err := r.repo.Create(ctx, exp); err != nil {
		return err
	}
	r.invalidateLists(ctx)
	return nil
}

// GetByID retrieves an experience by ID with caching
func (r *CachedExperienceRepository) GetByID(ctx context.Context, id string) (*domain.Experience, error) {
	key := experienceDetailKeyPrefix + id

	var cached domain.Experience
	if found, err := rediscache.GetJSON(ctx, r.cache, key, &cached); err == nil && found {
		return &cached, nil
	}

	exp, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = rediscache.SetJSON(ctx, r.cache, key, exp, r.ttl)
	return exp, nil
}

// Update updates an experience and invalidates its caches
func (r *CachedExperienceRepository) Update(ctx context.Context, exp *domain.Experience) error {
	if err := r.repo.Update(ctx, exp); err != nil {
		return err
	}
	r.cache.Del(ctx, experienceDetailKeyPrefix+exp.ID)
	r.invalidateLists(ctx)
	return nil
}

// List lists experiences, caching queries without free-text search or
// host scoping
func (r *CachedExperienceRepository) List(ctx context.Context, filter *ExperienceFilter, limit, offset int) ([]*domain.Experience, int, error) {
	if filter != nil && (filter.Search != "" || filter.HostID != "") {
		return r.repo.List(ctx, filter, limit, offset)
	}

	key := experienceListKey(filter, limit, offset)

	var cached cachedExperienceList
	if found, err := rediscache.GetJSON(ctx, r.cache, key, &cached); err == nil && found {
		return cached.Experiences, cached.Total, nil
	}

	experiences, total, err := r.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	_ = rediscache.SetJSON(ctx, r.cache, key, cachedExperienceList{Experiences: experiences, Total: total}, r.ttl)
	return experiences, total, nil
}

// SlugExists checks if a slug is already taken (bypass cache)
func (r *CachedExperienceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.repo.SlugExists(ctx, slug)
}

func (r *CachedExperienceRepository) invalidateLists(ctx context.Context) {
	_ = rediscache.DeletePattern(ctx, r.cache, experienceListKeyPrefix+"*")
}

func experienceListKey(filter *ExperienceFilter, limit, offset int) string {
	if filter == nil {
		filter = &ExperienceFilter{}
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%s:%d:%d",
		experienceListKeyPrefix,
		filter.Status,
		filter.CategoryID,
		filter.CategorySlug,
		priceBound(filter.MinPrice),
		priceBound(filter.MaxPrice),
		limit,
		offset,
	)
}

func priceBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
