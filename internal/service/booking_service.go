package service

import (
	"context"
	"strings"
	"time"

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

// bookingService implements BookingService
type bookingService struct {
	bookingRepo    repository.BookingRepository
	experienceRepo repository.ExperienceRepository
	eventPublisher EventPublisher
	log            *logger.Logger
	now            func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	experienceRepo repository.ExperienceRepository,
	eventPublisher EventPublisher,
	log *logger.Logger,
) BookingService {
	// Use NoOpEventPublisher if none provided
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	if log == nil {
		log = logger.Get()
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		experienceRepo: experienceRepo,
		eventPublisher: eventPublisher,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// QuoteBooking prices a booking without saving it
func (s *bookingService) QuoteBooking(ctx context.Context, req *dto.QuoteRequest) (*domain.Quote, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.quote")
	defer span.End()
	span.SetAttributes(attribute.String("experience_id", req.ExperienceID))

	exp, err := s.bookableExperience(ctx, req.ExperienceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	count := req.ParticipantCount
	if count == 0 {
		count = max(1, exp.MinParticipants)
	}
	if err := exp.AcceptsParticipants(count); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	details := req.CategoryDetails
	details.ParticipantCount = count

	quote := domain.NewQuote(exp, details)
	span.SetAttributes(attribute.String("category", quote.Category.String()), attribute.Float64("total_price", quote.TotalPrice))
	span.SetStatus(codes.Ok, "")
	return &quote, nil
}

// CreateBooking books a published experience. The booking and its
// pending payment are written in one transaction.
func (s *bookingService) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	now := s.now()
	if valid, msg := req.Validate(now); !valid {
		span.SetStatus(codes.Error, msg)
		metrics.RecordBookingFailure(ctx, "validation")
		return nil, domain.NewValidationError(msg)
	}
	span.SetAttributes(
		attribute.String("experience_id", req.ExperienceID),
		attribute.Int("participant_count", req.ParticipantCount),
		attribute.String("idempotency_key", req.IdempotencyKey),
	)

	exp, err := s.bookableExperience(ctx, req.ExperienceID)
	if err != nil {
		telemetry.RecordError(span, err)
		metrics.RecordBookingFailure(ctx, "not_bookable")
		return nil, err
	}
	if err := exp.AcceptsParticipants(req.ParticipantCount); err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordBookingFailure(ctx, "capacity")
		return nil, err
	}

	bookingDate, err := req.ParsedBookingDate()
	if err != nil {
		return nil, domain.ErrInvalidBookingDate
	}

	details := req.CategoryDetails
	details.ParticipantCount = req.ParticipantCount
	quote := domain.NewQuote(exp, details)

	booking := &domain.Booking{
		ID:               uuid.New().String(),
		Reference:        domain.NewBookingReference(),
		ExperienceID:     exp.ID,
		TravelerID:       req.TravelerID,
		GuestName:        strings.TrimSpace(req.GuestName),
		GuestEmail:       strings.TrimSpace(req.GuestEmail),
		GuestPhone:       strings.TrimSpace(req.GuestPhone),
		BookingDate:      bookingDate,
		StartTime:        req.StartTime,
		ParticipantCount: req.ParticipantCount,
		TotalPrice:       quote.TotalPrice,
		Currency:         quote.Currency,
		Status:           domain.BookingStatusPending,
		Category:         quote.Category,
		CategoryDetails:  quote.Details,
		SpecialRequests:  req.SpecialRequests,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	payment := domain.NewPendingPayment(booking, now)

	if err := s.bookingRepo.CreateWithPayment(ctx, booking, payment); err != nil {
		telemetry.RecordError(span, err)
		metrics.RecordBookingFailure(ctx, "storage")
		return nil, err
	}

	metrics.RecordBookingCreated(ctx, booking.Category.String(), booking.Currency, booking.TotalPrice)
	publishEvent(ctx, s.eventPublisher, s.log, domain.NewDomainEvent(domain.EventBookingCreated, booking.ID, booking))
	s.log.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("reference", booking.Reference),
		zap.Bool("guest", booking.IsGuest()),
		zap.String("idempotency_key", req.IdempotencyKey),
	)

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.Bool("guest", booking.IsGuest()),
		attribute.String("category", booking.Category.String()),
		attribute.Float64("total_price", booking.TotalPrice),
	)
	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// GetBooking retrieves a booking visible to actor
func (s *bookingService) GetBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, actor, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListBookings lists bookings with filters and pagination
func (s *bookingService) ListBookings(ctx context.Context, filter *dto.BookingListFilter) ([]*domain.Booking, int, error) {
	filter.SetDefaults()
	if valid, msg := filter.Validate(); !valid {
		return nil, 0, domain.NewValidationError(msg)
	}

	repoFilter := &repository.BookingFilter{
		Status:       domain.BookingStatus(filter.Status),
		ExperienceID: filter.ExperienceID,
		TravelerID:   filter.TravelerID,
		HostID:       filter.HostID,
	}
	return s.bookingRepo.List(ctx, repoFilter, filter.Limit, filter.Offset())
}

// CancelBooking cancels a pending or confirmed booking. The traveler,
// the host of the experience and admins may cancel.
func (s *bookingService) CancelBooking(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("booking_id", id))

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.authorizeView(ctx, actor, booking); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.applyStatus(ctx, actor, booking, domain.BookingActionCancel, reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// AdvanceBooking confirms, starts or completes a booking
func (s *bookingService) AdvanceBooking(ctx context.Context, actor domain.Actor, id string, action domain.BookingAction) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.advance")
	defer span.End()
	span.SetAttributes(attribute.String("booking_id", id), attribute.String("action", string(action)))

	switch action {
	case domain.BookingActionConfirm, domain.BookingActionStart, domain.BookingActionComplete:
	default:
		span.SetStatus(codes.Error, "unknown action")
		return nil, domain.ErrUnknownAction
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !actor.IsAdmin() {
		hosted, err := s.hostedBy(ctx, booking, actor.UserID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if !hosted {
			span.SetStatus(codes.Error, "access denied")
			return nil, domain.ErrBookingAccessDenied
		}
	}

	if err := s.applyStatus(ctx, actor, booking, action, ""); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return booking, nil
}

func (s *bookingService) applyStatus(ctx context.Context, actor domain.Actor, booking *domain.Booking, action domain.BookingAction, reason string) error {
	from := booking.Status
	if err := booking.Apply(action, reason, s.now()); err != nil {
		return err
	}
	if err := s.bookingRepo.UpdateStatus(ctx, booking); err != nil {
		return err
	}

	metrics.RecordBookingStatusChange(ctx, string(action), booking.Status.String())
	publishEvent(ctx, s.eventPublisher, s.log, domain.NewDomainEvent(domain.EventBookingStatusChanged, booking.ID, domain.BookingStatusChanged{
		BookingID:    booking.ID,
		ExperienceID: booking.ExperienceID,
		Action:       action,
		From:         from,
		To:           booking.Status,
		ActorID:      actor.UserID,
	}))
	return nil
}

func (s *bookingService) bookableExperience(ctx context.Context, id string) (*domain.Experience, error) {
	exp, err := s.experienceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exp.CanBeBooked() {
		return nil, domain.ErrExperienceNotBookable
	}
	return exp, nil
}

// authorizeView lets the traveler, the host of the experience and admins through
func (s *bookingService) authorizeView(ctx context.Context, actor domain.Actor, booking *domain.Booking) error {
	if actor.IsAdmin() || booking.BelongsToTraveler(actor.UserID) {
		return nil
	}
	hosted, err := s.hostedBy(ctx, booking, actor.UserID)
	if err != nil {
		return err
	}
	if !hosted {
		return domain.ErrBookingAccessDenied
	}
	return nil
}

func (s *bookingService) hostedBy(ctx context.Context, booking *domain.Booking, userID string) (bool, error) {
	exp, err := s.experienceRepo.GetByID(ctx, booking.ExperienceID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return exp.OwnedBy(userID), nil
}
