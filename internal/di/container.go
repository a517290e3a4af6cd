package di

import (
	"time"

	"github.com/prohmpiriya/experience-marketplace/internal/handler"
	"github.com/prohmpiriya/experience-marketplace/internal/repository"
	"github.com/prohmpiriya/experience-marketplace/internal/service"
	"github.com/prohmpiriya/experience-marketplace/pkg/database"
	"github.com/prohmpiriya/experience-marketplace/pkg/logger"
	"github.com/prohmpiriya/experience-marketplace/pkg/redis"
)

// Container holds all dependencies for the marketplace API
type Container struct {
	// Infrastructure
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher service.EventPublisher

	// Repositories
	ExperienceRepo repository.ExperienceRepository
	CategoryRepo   repository.CategoryRepository
	BookingRepo    repository.BookingRepository
	ReviewRepo     repository.ReviewRepository

	// Services
	ExperienceService service.ExperienceService
	BookingService    service.BookingService
	ReviewService     service.ReviewService
	CategoryService   service.CategoryService

	// Handlers
	HealthHandler     *handler.HealthHandler
	ExperienceHandler *handler.ExperienceHandler
	BookingHandler    *handler.BookingHandler
	ReviewHandler     *handler.ReviewHandler
	CategoryHandler   *handler.CategoryHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher service.EventPublisher
	Logger    *logger.Logger

	Version         string
	DefaultCurrency string
	CacheTTL        time.Duration
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Publisher: cfg.Publisher,
	}
	if c.Publisher == nil {
		c.Publisher = service.NewNoOpEventPublisher()
	}

	// Initialize repositories
	pgExperienceRepo := repository.NewPostgresExperienceRepository(c.DB.Pool())

	// Wrap with cache if Redis is available
	if c.Redis != nil {
		c.ExperienceRepo = repository.NewCachedExperienceRepository(pgExperienceRepo, c.Redis.Client(), cfg.CacheTTL)
	} else {
		c.ExperienceRepo = pgExperienceRepo
	}
	c.CategoryRepo = repository.NewPostgresCategoryRepository(c.DB.Pool())
	c.BookingRepo = repository.NewPostgresBookingRepository(c.DB.Pool())
	c.ReviewRepo = repository.NewPostgresReviewRepository(c.DB.Pool())

	// Initialize services
	c.ExperienceService = service.NewExperienceService(
		c.ExperienceRepo,
		c.CategoryRepo,
		c.BookingRepo,
		c.Publisher,
		cfg.Logger,
		&service.ExperienceServiceConfig{DefaultCurrency: cfg.DefaultCurrency},
	)
	c.BookingService = service.NewBookingService(c.BookingRepo, c.ExperienceRepo, c.Publisher, cfg.Logger)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.BookingRepo, c.ExperienceRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)

	// Initialize handlers
	components := map[string]handler.HealthChecker{"database": c.DB}
	if c.Redis != nil {
		components["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(cfg.Version, components)
	c.ExperienceHandler = handler.NewExperienceHandler(c.ExperienceService)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.ReviewHandler = handler.NewReviewHandler(c.ReviewService)
	c.CategoryHandler = handler.NewCategoryHandler(c.CategoryService)

	return c
}
