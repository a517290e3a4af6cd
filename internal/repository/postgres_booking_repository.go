package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/pkg/database"
	"github.com/prohmpiriya/experience-marketplace/pkg/telemetry"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const bookingColumns = `b.id, b.reference, b.experience_id, b.traveler_id,
	COALESCE(b.guest_name, '') AS guest_name,
	COALESCE(b.guest_email, '') AS guest_email,
	COALESCE(b.guest_phone, '') AS guest_phone,
	b.booking_date,
	COALESCE(b.start_time, '') AS start_time,
	b.participant_count, b.total_price, b.currency, b.status, b.category,
	b.category_specific_data,
	COALESCE(b.special_requests, '') AS special_requests,
	COALESCE(b.cancellation_reason, '') AS cancellation_reason,
	b.confirmed_at, b.cancelled_at, b.completed_at, b.created_at, b.updated_at`

const bookingFrom = `bookings b JOIN experiences e ON e.id = b.experience_id`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	var details []byte

	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.ExperienceID,
		&b.TravelerID,
		&b.GuestName,
		&b.GuestEmail,
		&b.GuestPhone,
		&b.BookingDate,
		&b.StartTime,
		&b.ParticipantCount,
		&b.TotalPrice,
		&b.Currency,
		&b.Status,
		&b.Category,
		&details,
		&b.SpecialRequests,
		&b.CancellationReason,
		&b.ConfirmedAt,
		&b.CancelledAt,
		&b.CompletedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CategoryDetails, err = domain.DecodeCategoryDetails(b.Category, details)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateWithPayment inserts a booking and its pending payment in one
// transaction
func (r *PostgresBookingRepository) CreateWithPayment(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.booking.create_with_payment")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("experience_id", booking.ExperienceID),
		attribute.String("category", booking.Category.String()),
	)

	details, err := json.Marshal(booking.CategoryDetails)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode details failed")
		return fmt.Errorf("failed to encode category details: %w", err)
	}

	err = database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		bookingQuery := `
			INSERT INTO bookings (
				id, reference, experience_id, traveler_id, guest_name, guest_email,
				guest_phone, booking_date, start_time, participant_count, total_price,
				currency, status, category, category_specific_data, special_requests,
				created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8,
				NULLIF($9, ''), $10, $11, $12, $13, $14, $15, NULLIF($16, ''), $17, $18
			)
		`
		if _, err := tx.Exec(ctx, bookingQuery,
			booking.ID,
			booking.Reference,
			booking.ExperienceID,
			booking.TravelerID,
			booking.GuestName,
			booking.GuestEmail,
			booking.GuestPhone,
			booking.BookingDate,
			booking.StartTime,
			booking.ParticipantCount,
			booking.TotalPrice,
			booking.Currency,
			booking.Status,
			booking.Category,
			details,
			booking.SpecialRequests,
			booking.CreatedAt,
			booking.UpdatedAt,
		); err != nil {
			if isPgError(err, pgForeignKeyViolation) {
				return domain.ErrExperienceNotFound
			}
			return fmt.Errorf("failed to insert booking: %w", err)
		}

		paymentQuery := `
			INSERT INTO payments (id, booking_id, amount, currency, status, provider, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
		`
		if _, err := tx.Exec(ctx, paymentQuery,
			payment.ID,
			payment.BookingID,
			payment.Amount,
			payment.Currency,
			payment.Status,
			payment.Provider,
			payment.CreatedAt,
			payment.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))
	if !isUUID(id) {
		span.SetStatus(codes.Error, "not found")
		return nil, domain.ErrBookingNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE b.id = $1`, bookingColumns, bookingFrom)
	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// List lists bookings with filters and pagination, newest first
func (r *PostgresBookingRepository) List(ctx context.Context, filter *BookingFilter, limit, offset int) ([]*domain.Booking, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.booking.list")
	defer span.End()

	where := &whereClause{}
	if filter != nil {
		if filter.Status != "" {
			where.add("b.status = $%d", filter.Status)
		}
		if filter.ExperienceID != "" {
			where.addID("b.experience_id = $%d", filter.ExperienceID)
		}
		if filter.TravelerID != "" {
			where.addID("b.traveler_id = $%d", filter.TravelerID)
		}
		if filter.HostID != "" {
			where.addID("e.host_id = $%d", filter.HostID)
		}
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", bookingFrom, where)
	if err := r.pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	paging, args := where.page(limit, offset)
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY b.created_at DESC
		%s
	`, bookingColumns, bookingFrom, where, paging)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, total, nil
}

// UpdateStatus persists the status fields of a booking
func (r *PostgresBookingRepository) UpdateStatus(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.booking.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("status", booking.Status.String()),
	)
	if !isUUID(booking.ID) {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrBookingNotFound
	}

	query := `
		UPDATE bookings SET
			status = $2, cancellation_reason = NULLIF($3, ''),
			confirmed_at = $4, cancelled_at = $5, completed_at = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.Status,
		booking.CancellationReason,
		booking.ConfirmedAt,
		booking.CancelledAt,
		booking.CompletedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrBookingNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// CountActiveByExperience counts bookings of an experience whose status is
// one of domain.ActiveBookingStatuses
func (r *PostgresBookingRepository) CountActiveByExperience(ctx context.Context, experienceID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.booking.count_active")
	defer span.End()

	statuses := make([]string, len(domain.ActiveBookingStatuses))
	for i, s := range domain.ActiveBookingStatuses {
		statuses[i] = s.String()
	}

	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE experience_id = $1 AND status = ANY($2)`
	if err := r.pool.QueryRow(ctx, query, experienceID, statuses).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}

	span.SetAttributes(attribute.Int("active_bookings", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}
