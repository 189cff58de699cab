package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, parent_id, tutor_id, child_id, subject, scheduled_at, duration_minutes,
	format, fee, notes, status, parent_confirmed, tutor_confirmed, cancelled_by,
	cancellation_reason, created_at, updated_at`

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(b *base.Repository) *BookingRepository {
	return &BookingRepository{Repository: b}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.ParentID,
		&b.TutorID,
		&b.ChildID,
		&b.Subject,
		&b.ScheduledAt,
		&b.DurationMinutes,
		&b.Format,
		&b.Fee,
		&b.Notes,
		&b.Status,
		&b.ParentConfirmed,
		&b.TutorConfirmed,
		&b.CancelledBy,
		&b.CancellationReason,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a new booking and fills in the generated fields
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (parent_id, tutor_id, child_id, subject, scheduled_at, duration_minutes,
			format, fee, notes, status, parent_confirmed, tutor_confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		booking.ParentID,
		booking.TutorID,
		booking.ChildID,
		booking.Subject,
		booking.ScheduledAt,
		booking.DurationMinutes,
		booking.Format,
		booking.Fee,
		booking.Notes,
		booking.Status,
		booking.ParentConfirmed,
		booking.TutorConfirmed,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID returns the booking or nil when it does not exist
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// GetByIDForUpdate locks the row until the surrounding transaction ends
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}

	return booking, nil
}

// ListByParent returns all bookings made by a parent, newest session first
func (r *BookingRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*model.Booking, error) {
	return r.list(ctx, "list bookings by parent",
		`SELECT `+bookingColumns+` FROM bookings WHERE parent_id = $1 ORDER BY scheduled_at DESC`, parentID)
}

// ListByTutor returns all bookings for a tutor, newest session first
func (r *BookingRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.Booking, error) {
	return r.list(ctx, "list bookings by tutor",
		`SELECT `+bookingColumns+` FROM bookings WHERE tutor_id = $1 ORDER BY scheduled_at DESC`, tutorID)
}

// ListAll is used by admins
func (r *BookingRepository) ListAll(ctx context.Context) ([]*model.Booking, error) {
	return r.list(ctx, "list bookings",
		`SELECT `+bookingColumns+` FROM bookings ORDER BY scheduled_at DESC`)
}

func (r *BookingRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bookings, err := base.CollectRows(rows, scanBooking)
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}

	return bookings, nil
}

// UpdateStatus writes the lifecycle columns of the booking
func (r *BookingRepository) UpdateStatus(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, parent_confirmed = $2, tutor_confirmed = $3, scheduled_at = $4,
			cancelled_by = $5, cancellation_reason = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		booking.Status,
		booking.ParentConfirmed,
		booking.TutorConfirmed,
		booking.ScheduledAt,
		booking.CancelledBy,
		booking.CancellationReason,
		booking.ID,
	).Scan(&booking.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("booking not found")
		}
		return fmt.Errorf("update booking status: %w", err)
	}

	return nil
}

// Delete removes exactly one booking row
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete booking: %w", err)
	}

	return affected, nil
}

// HasReview reports whether a review references the booking
func (r *BookingRepository) HasReview(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reviews WHERE booking_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booking review: %w", err)
	}

	return exists, nil
}
