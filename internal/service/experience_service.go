package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/dto"
	"github.com/prohmpiriya/experience-marketplace/internal/metrics"
	"github.com/prohmpiriya/experience-marketplace/internal/repository"
	"github.com/prohmpiriya/experience-marketplace/pkg/logger"
	"github.com/prohmpiriya/experience-marketplace/pkg/telemetry"
)

// ExperienceServiceConfig contains configuration for experience service
type ExperienceServiceConfig struct {
	DefaultCurrency string
}

// experienceService implements ExperienceService
type experienceService struct {
	experienceRepo  repository.ExperienceRepository
	categoryRepo    repository.CategoryRepository
	bookingRepo     repository.BookingRepository
	eventPublisher  EventPublisher
	log             *logger.Logger
	defaultCurrency string
}

// NewExperienceService creates a new ExperienceService
func NewExperienceService(
	experienceRepo repository.ExperienceRepository,
	categoryRepo repository.CategoryRepository,
	bookingRepo repository.BookingRepository,
	eventPublisher EventPublisher,
	log *logger.Logger,
	cfg *ExperienceServiceConfig,
) ExperienceService {
	currency := "IDR"
	if cfg != nil && cfg.DefaultCurrency != "" {
		currency = cfg.DefaultCurrency
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	if log == nil {
		log = logger.Get()
	}
	return &experienceService{
		experienceRepo:  experienceRepo,
		categoryRepo:    categoryRepo,
		bookingRepo:     bookingRepo,
		eventPublisher:  eventPublisher,
		log:             log,
		defaultCurrency: currency,
	}
}

// CreateExperience creates a draft experience
func (s *experienceService) CreateExperience(ctx context.Context, req *dto.CreateExperienceRequest) (*domain.Experience, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.experience.create")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}

	category, err := s.activeCategory(ctx, req.CategoryID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	baseSlug := generateSlug(req.Title)
	slug, err := s.ensureUniqueSlug(ctx, baseSlug)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}
	minParticipants := req.MinParticipants
	if minParticipants == 0 {
		minParticipants = 1
	}

	now := time.Now().UTC()
	exp := &domain.Experience{
		ID:              uuid.New().String(),
		HostID:          req.HostID,
		CategoryID:      category.ID,
		CategorySlug:    category.Slug,
		Title:           strings.TrimSpace(req.Title),
		Slug:            slug,
		Description:     req.Description,
		Location:        req.Location,
		PricePerPackage: req.PricePerPackage,
		Currency:        currency,
		MinParticipants: minParticipants,
		MaxParticipants: req.MaxParticipants,
		DurationMinutes: req.DurationMinutes,
		Status:          domain.ExperienceStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := exp.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// A concurrent create can claim the slug between the check and the insert
	for attempt := 1; ; attempt++ {
		err = s.experienceRepo.Create(ctx, exp)
		if !errors.Is(err, domain.ErrSlugTaken) || attempt == slugInsertAttempts {
			break
		}
		exp.Slug = randomSlug(baseSlug)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("experience_id", exp.ID), attribute.String("category", category.Slug))
	span.SetStatus(codes.Ok, "")
	return exp, nil
}

// GetExperience retrieves an experience visible to viewer
func (s *experienceService) GetExperience(ctx context.Context, id string, viewer *domain.Actor) (*domain.Experience, error) {
	exp, err := s.experienceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp.Status == domain.ExperienceStatusPublished {
		return exp, nil
	}
	// unpublished listings do not leak to other users
	if viewer == nil || !(viewer.IsAdmin() || exp.OwnedBy(viewer.UserID)) {
		return nil, domain.ErrExperienceNotFound
	}
	return exp, nil
}

// ListPublished lists experiences open for booking
func (s *experienceService) ListPublished(ctx context.Context, filter *dto.ExperienceListFilter) ([]*domain.Experience, int, error) {
	repoFilter, err := toExperienceFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	repoFilter.Status = domain.ExperienceStatusPublished
	return s.experienceRepo.List(ctx, repoFilter, filter.Limit, filter.Offset())
}

// ListByHost lists the experiences of one host
func (s *experienceService) ListByHost(ctx context.Context, hostID string, filter *dto.ExperienceListFilter) ([]*domain.Experience, int, error) {
	repoFilter, err := toExperienceFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	repoFilter.HostID = hostID
	return s.experienceRepo.List(ctx, repoFilter, filter.Limit, filter.Offset())
}

// ListAll lists experiences in any status
func (s *experienceService) ListAll(ctx context.Context, filter *dto.ExperienceListFilter) ([]*domain.Experience, int, error) {
	repoFilter, err := toExperienceFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	return s.experienceRepo.List(ctx, repoFilter, filter.Limit, filter.Offset())
}

// UpdateExperience updates the editable fields of an experience
func (s *experienceService) UpdateExperience(ctx context.Context, actor domain.Actor, id string, req *dto.UpdateExperienceRequest) (*domain.Experience, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.experience.update")
	defer span.End()
	span.SetAttributes(attribute.String("experience_id", id))

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, domain.NewValidationError(msg)
	}

	exp, err := s.experienceRepo.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !actor.IsAdmin() && !exp.OwnedBy(actor.UserID) {
		span.SetStatus(codes.Error, "not owner")
		return nil, domain.ErrNotOwner
	}

	if req.CategoryID != nil && *req.CategoryID != exp.CategoryID {
		category, err := s.activeCategory(ctx, *req.CategoryID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		exp.CategoryID = category.ID
		exp.CategorySlug = category.Slug
	}
	if req.Title != nil {
		exp.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		exp.Description = *req.Description
	}
	if req.Location != nil {
		exp.Location = *req.Location
	}
	if req.PricePerPackage != nil {
		exp.PricePerPackage = *req.PricePerPackage
	}
	if req.Currency != nil {
		exp.Currency = strings.ToUpper(*req.Currency)
	}
	if req.MinParticipants != nil {
		exp.MinParticipants = *req.MinParticipants
	}
	if req.MaxParticipants != nil {
		exp.MaxParticipants = *req.MaxParticipants
	}
	if req.DurationMinutes != nil {
		exp.DurationMinutes = *req.DurationMinutes
	}
	if err := exp.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	exp.UpdatedAt = time.Now().UTC()

	if err := s.experienceRepo.Update(ctx, exp); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return exp, nil
}

// ApplyAction runs a lifecycle action and persists the new status
func (s *experienceService) ApplyAction(ctx context.Context, actor domain.Actor, id string, action domain.Action, reason string) (*domain.Experience, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.experience.apply_action")
	defer span.End()
	span.SetAttributes(
		attribute.String("experience_id", id),
		attribute.String("action", string(action)),
		attribute.String("actor_role", actor.Role.String()),
	)

	exp, err := s.experienceRepo.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := authorizeAction(actor, exp, action); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if action == domain.ActionDelete {
		active, err := s.bookingRepo.CountActiveByExperience(ctx, exp.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if !domain.CanBeDeleted(active) {
			span.SetAttributes(attribute.Int("active_bookings", active))
			span.SetStatus(codes.Error, "has active bookings")
			return nil, domain.ErrHasActiveBookings
		}
	}

	from := exp.Status
	if err := exp.Apply(action, reason, time.Now().UTC()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.experienceRepo.Update(ctx, exp); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordExperienceTransition(ctx, string(action), from.String(), exp.Status.String())

	event := domain.NewDomainEvent(domain.EventExperienceStatusChanged, exp.ID, domain.ExperienceStatusChanged{
		ExperienceID: exp.ID,
		HostID:       exp.HostID,
		Action:       action,
		From:         from,
		To:           exp.Status,
		Reason:       strings.TrimSpace(reason),
		ActorID:      actor.UserID,
	})
	publishEvent(ctx, s.eventPublisher, s.log, event)

	span.SetAttributes(attribute.String("status", exp.Status.String()))
	span.SetStatus(codes.Ok, "")
	return exp, nil
}

// authorizeAction checks who may run action on exp. Review and
// moderation actions belong to admins; the rest to the host.
func authorizeAction(actor domain.Actor, exp *domain.Experience, action domain.Action) error {
	switch action {
	case domain.ActionPublish, domain.ActionReject, domain.ActionSuspend:
		if !actor.IsAdmin() {
			return domain.ErrAdminRequired
		}
		return nil
	}
	if actor.IsAdmin() || exp.OwnedBy(actor.UserID) {
		return nil
	}
	return domain.ErrNotOwner
}

func (s *experienceService) activeCategory(ctx context.Context, id string) (*domain.ExperienceCategory, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

func toExperienceFilter(filter *dto.ExperienceListFilter) (*repository.ExperienceFilter, error) {
	filter.SetDefaults()
	if valid, msg := filter.Validate(); !valid {
		return nil, domain.NewValidationError(msg)
	}

	status := domain.ExperienceStatus(filter.Status)
	if status != "" && !status.IsValid() {
		return nil, domain.NewValidationError("Unknown experience status")
	}

	return &repository.ExperienceFilter{
		Status:       status,
		CategoryID:   filter.CategoryID,
		CategorySlug: filter.Category,
		HostID:       filter.HostID,
		Search:       strings.TrimSpace(filter.Search),
		MinPrice:     filter.MinPrice,
		MaxPrice:     filter.MaxPrice,
	}, nil
}

// publishEvent publishes event; a failure is logged and never fails the caller
func publishEvent(ctx context.Context, publisher EventPublisher, log *logger.Logger, event *domain.DomainEvent) {
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("failed to publish event",
			zap.String("event_type", string(event.Type)),
			zap.String("aggregate_id", event.AggregateID),
			zap.Error(err),
		)
	}
}

var multiDash = regexp.MustCompile(`-+`)

// generateSlug generates a URL-friendly slug from a title
func generateSlug(title string) string {
	slug := strings.ToLower(title)

	var result strings.Builder
	for _, r := range slug {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else if unicode.IsSpace(r) || r == '-' || r == '_' {
			result.WriteRune('-')
		}
	}
	slug = result.String()

	slug = multiDash.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "experience"
	}
	return slug
}

// ensureUniqueSlug appends a counter, then a random suffix, until the slug is free
func (s *experienceService) ensureUniqueSlug(ctx context.Context, baseSlug string) (string, error) {
	slug := baseSlug
	for counter := 1; counter <= 10; counter++ {
		exists, err := s.experienceRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", baseSlug, counter)
	}
	return randomSlug(baseSlug), nil
}

const slugInsertAttempts = 3

func randomSlug(baseSlug string) string {
	return baseSlug + "-" + uuid.New().String()[:8]
}
