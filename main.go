package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/experience-marketplace/internal/di"
	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/metrics"
	"github.com/prohmpiriya/experience-marketplace/internal/service"
	"github.com/prohmpiriya/experience-marketplace/pkg/config"
	"github.com/prohmpiriya/experience-marketplace/pkg/database"
	"github.com/prohmpiriya/experience-marketplace/pkg/kafka"
	"github.com/prohmpiriya/experience-marketplace/pkg/logger"
	"github.com/prohmpiriya/experience-marketplace/pkg/middleware"
	"github.com/prohmpiriya/experience-marketplace/pkg/redis"
	"github.com/prohmpiriya/experience-marketplace/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting experience marketplace API", zap.String("version", cfg.App.Version))

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
		MetricInterval: cfg.OTel.MetricInterval,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn("Failed to initialize telemetry", zap.Error(err))
	} else if telemetryCfg.Enabled {
		appLog.Info("Telemetry initialized", zap.String("collector", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn("Failed to initialize metrics", zap.Error(err))
	}

	// Initialize database connection
	dbCfg := database.NewPostgresConfig(cfg.Database, cfg.OTel.Enabled)
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected",
		zap.Int32("min_conns", dbCfg.MinConns),
		zap.Int32("max_conns", dbCfg.MaxConns),
	)

	// Initialize Redis connection (optional - caching and idempotency are disabled without it)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisCfg := redis.FromAppConfig(cfg.Redis)
		redisClient, err = redis.NewClient(ctx, redisCfg)
		if err != nil {
			appLog.Warn("Redis connection failed (caching disabled)", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info("Redis connected", zap.String("addr", redisCfg.Addr()))
		}
	}

	// Initialize event publisher (optional)
	publisher := newEventPublisher(ctx, cfg, appLog)
	defer publisher.Close()

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:              db,
		Redis:           redisClient,
		Publisher:       publisher,
		Logger:          appLog,
		Version:         cfg.App.Version,
		DefaultCurrency: cfg.Booking.DefaultCurrency,
		CacheTTL:        cfg.Redis.CacheTTL,
	})

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	router.Use(middleware.CORSWithConfig(corsCfg))

	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	jwtConfig := &middleware.JWTConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}

	var idempotency gin.HandlerFunc
	if redisClient != nil {
		idemCfg := middleware.DefaultIdempotencyConfig(redisClient.Client())
		if cfg.Booking.IdempotencyTTL > 0 {
			idemCfg.TTL = cfg.Booking.IdempotencyTTL
		}
		idempotency = middleware.IdempotencyMiddleware(idemCfg)
	} else {
		idempotency = func(c *gin.Context) { c.Next() }
	}

	exp := container.ExperienceHandler
	bk := container.BookingHandler

	v1 := router.Group("/api/v1")
	{
		// Public endpoints, identity is attached when a token is present
		public := v1.Group("")
		public.Use(middleware.OptionalJWTMiddleware(jwtConfig))
		{
			public.GET("/categories", container.CategoryHandler.List)
			public.GET("/experiences", exp.List)
			public.GET("/experiences/:id", exp.Get)
			public.GET("/experiences/:id/reviews", container.ReviewHandler.ListByExperience)
			public.POST("/bookings/quote", bk.Quote)
			public.POST("/bookings", idempotency, bk.Create)
		}

		// Traveler endpoints
		traveler := v1.Group("")
		traveler.Use(middleware.JWTMiddleware(jwtConfig))
		{
			traveler.GET("/bookings/me", bk.ListMine) // Must be before /bookings/:id
			traveler.GET("/bookings/:id", bk.Get)
			traveler.POST("/bookings/:id/cancel", bk.Cancel)
			traveler.POST("/reviews", container.ReviewHandler.Create)
		}

		// Host endpoints (Host/Admin only)
		host := v1.Group("/host")
		host.Use(middleware.JWTMiddleware(jwtConfig))
		host.Use(middleware.RequireRole(string(domain.RoleHost), string(domain.RoleAdmin)))
		{
			host.POST("/experiences", exp.Create)
			host.GET("/experiences", exp.ListMine)
			host.PUT("/experiences/:id", exp.Update)
			host.POST("/experiences/:id/submit", exp.Action(domain.ActionSubmit))
			host.POST("/experiences/:id/resubmit", exp.Action(domain.ActionResubmit))
			host.POST("/experiences/:id/pause", exp.Action(domain.ActionPause))
			host.POST("/experiences/:id/resume", exp.Action(domain.ActionResume))
			host.DELETE("/experiences/:id", exp.Action(domain.ActionDelete))

			host.GET("/bookings", bk.ListHost)
			host.POST("/bookings/:id/confirm", bk.Advance(domain.BookingActionConfirm))
			host.POST("/bookings/:id/start", bk.Advance(domain.BookingActionStart))
			host.POST("/bookings/:id/complete", bk.Advance(domain.BookingActionComplete))
		}

		// Admin endpoints
		admin := v1.Group("/admin")
		admin.Use(middleware.JWTMiddleware(jwtConfig))
		admin.Use(middleware.RequireRole(string(domain.RoleAdmin)))
		{
			admin.GET("/experiences", exp.ListAll)
			admin.POST("/experiences/:id/publish", exp.Action(domain.ActionPublish))
			admin.POST("/experiences/:id/reject", exp.Action(domain.ActionReject))
			admin.POST("/experiences/:id/suspend", exp.Action(domain.ActionSuspend))
			admin.DELETE("/experiences/:id", exp.Action(domain.ActionDelete))

			admin.GET("/bookings", bk.ListAll)
			admin.POST("/categories", container.CategoryHandler.Create)
			admin.PATCH("/reviews/:id/visibility", container.ReviewHandler.SetVisibility)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info("Marketplace API listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	appLog.Info("Server exited gracefully")
}

// newEventPublisher connects to Kafka when enabled. Any failure falls back
// to the no-op publisher so the API keeps serving.
func newEventPublisher(ctx context.Context, cfg *config.Config, appLog *logger.Logger) service.EventPublisher {
	if !cfg.Kafka.Enabled {
		return service.NewNoOpEventPublisher()
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Kafka.Brokers,
		ClientID:      cfg.Kafka.ClientID,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
		LingerMs:      5,
	})
	if err != nil {
		appLog.Warn("Kafka connection failed (events disabled)", zap.Error(err))
		return service.NewNoOpEventPublisher()
	}

	publisher, err := service.NewKafkaEventPublisher(producer, &service.EventPublisherConfig{
		Topic:       cfg.Kafka.Topic,
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		producer.Close()
		appLog.Warn("Failed to create event publisher", zap.Error(err))
		return service.NewNoOpEventPublisher()
	}

	appLog.Info("Kafka event publisher ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	return publisher
}
