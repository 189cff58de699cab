package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lesson length bounds in minutes
const (
	MinLessonDuration = 15
	MaxLessonDuration = 480
)

type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*model.Booking, error)
	ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.Booking, error)
	ListAll(ctx context.Context) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	HasReview(ctx context.Context, id uuid.UUID) (bool, error)
}

type ChildReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Child, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// CreateBookingInput is a parent's booking request
type CreateBookingInput struct {
	TutorID         uuid.UUID
	ChildID         uuid.UUID
	Subject         string
	ScheduledAt     time.Time
	DurationMinutes int
	Format          model.LessonFormat
	Fee             int // pence; zero means derive from the tutor's hourly rate
	Notes           string
}

// StatusChange is a requested transition
type StatusChange struct {
	Status      model.BookingStatus
	ScheduledAt *time.Time // required for rescheduled
	Reason      string     // optional, stored for cancelled
}

type BookingService struct {
	tx            TxRunner
	bookings      BookingStore
	children      ChildReader
	users         UserReader
	notifications NotificationWriter
	logger        *zap.Logger
	now           func() time.Time
}

func NewBookingService(
	tx TxRunner,
	bookings BookingStore,
	children ChildReader,
	users UserReader,
	notifications NotificationWriter,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:            tx,
		bookings:      bookings,
		children:      children,
		users:         users,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

// Create stores a new booking made by a parent. New bookings always start
// pending with only the parent's confirmation set.
func (s *BookingService) Create(ctx context.Context, actor Actor, in CreateBookingInput) (*model.Booking, error) {
	if !actor.IsParent() {
		return nil, fmt.Errorf("%w: only parents can book lessons", ErrForbiddenAction)
	}

	in.Subject = strings.TrimSpace(in.Subject)
	if in.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if in.DurationMinutes < MinLessonDuration || in.DurationMinutes > MaxLessonDuration {
		return nil, fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrValidation, MinLessonDuration, MaxLessonDuration)
	}
	if in.Format == "" {
		in.Format = model.LessonFormatOnline
	}
	if !in.Format.Valid() {
		return nil, fmt.Errorf("%w: unknown lesson format %q", ErrValidation, in.Format)
	}
	if in.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled time is required", ErrValidation)
	}
	if in.Fee < 0 {
		return nil, fmt.Errorf("%w: fee cannot be negative", ErrValidation)
	}

	child, err := s.children.GetByID(ctx, in.ChildID)
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if child.ParentID != actor.ID {
		return nil, ErrNotOwner
	}

	tutor, err := s.users.GetByID(ctx, in.TutorID)
	if err != nil {
		return nil, fmt.Errorf("get tutor: %w", err)
	}
	if tutor == nil || !tutor.IsTeacher() {
		return nil, ErrTutorNotFound
	}

	fee := in.Fee
	if fee == 0 {
		fee = tutor.HourlyRate * in.DurationMinutes / 60
	}

	booking := &model.Booking{
		ParentID:        actor.ID,
		TutorID:         tutor.ID,
		ChildID:         child.ID,
		Subject:         in.Subject,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: in.DurationMinutes,
		Format:          in.Format,
		Fee:             fee,
		Notes:           strings.TrimSpace(in.Notes),
		Status:          model.BookingStatusPending,
		ParentConfirmed: true,
		TutorConfirmed:  false,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.bookings.Create(ctx, booking); err != nil {
			return err
		}
		return s.notifications.Create(ctx,
			bookingNotification(booking.TutorID, model.NotificationBookingCreated, booking))
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("parent_id", actor.ID.String()),
		zap.String("tutor_id", booking.TutorID.String()),
		zap.String("subject", booking.Subject),
	)

	booking.Child = child
	booking.Tutor = tutor
	return booking, nil
}

// Get returns a booking visible to the actor
func (s *BookingService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !actor.IsAdmin() && !booking.IsParty(actor.ID) {
		return nil, ErrNotParty
	}
	return booking, nil
}

// ListForActor returns the bookings the actor takes part in
func (s *BookingService) ListForActor(ctx context.Context, actor Actor) ([]*model.Booking, error) {
	switch actor.Role {
	case model.UserTypeParent:
		return s.bookings.ListByParent(ctx, actor.ID)
	case model.UserTypeTeacher:
		return s.bookings.ListByTutor(ctx, actor.ID)
	case model.UserTypeAdmin:
		return s.bookings.ListAll(ctx)
	}
	return nil, ErrForbiddenAction
}

// UpdateStatus applies a status transition requested by the actor. The row is
// locked for the duration of the transaction and the counterparty notification
// is written in the same transaction. Re-applying the current status is a no-op.
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, change StatusChange) (*model.Booking, error) {
	if !change.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, change.Status)
	}

	var (
		result  *model.Booking
		changed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if !actor.IsAdmin() && !booking.IsParty(actor.ID) {
			return ErrNotParty
		}

		changed, err = s.applyChange(actor, booking, change)
		if err != nil {
			return err
		}
		result = booking
		if !changed {
			return nil
		}

		if err := s.bookings.UpdateStatus(ctx, booking); err != nil {
			return err
		}

		typ := bookingNotificationType(change.Status)
		for _, userID := range booking.Counterparty(actor.ID) {
			if err := s.notifications.Create(ctx, bookingNotification(userID, typ, booking)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	if changed {
		s.logger.Info("Booking status updated",
			zap.String("booking_id", id.String()),
			zap.String("actor_id", actor.ID.String()),
			zap.String("role", string(actor.Role)),
			zap.String("status", string(result.Status)),
			zap.Bool("parent_confirmed", result.ParentConfirmed),
			zap.Bool("tutor_confirmed", result.TutorConfirmed),
		)
	}

	return result, nil
}

// applyChange mutates booking in memory and reports whether anything changed
func (s *BookingService) applyChange(actor Actor, b *model.Booking, change StatusChange) (bool, error) {
	switch change.Status {
	case model.BookingStatusConfirmed:
		return s.applyConfirm(actor, b)
	case model.BookingStatusRescheduled:
		return s.applyReschedule(actor, b, change)
	}

	if b.Status == change.Status {
		return false, nil
	}
	if !b.Status.CanTransitionTo(change.Status) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, change.Status)
	}

	switch change.Status {
	case model.BookingStatusCompleted, model.BookingStatusNoShow:
		if !actor.IsAdmin() && actor.ID != b.TutorID {
			return false, fmt.Errorf("%w: only the tutor can mark a lesson %s", ErrForbiddenAction, change.Status)
		}
	case model.BookingStatusCancelled:
		cancelledBy := actor.ID
		b.CancelledBy = &cancelledBy
		b.CancellationReason = strings.TrimSpace(change.Reason)
	}

	b.Status = change.Status
	return true, nil
}

// applyConfirm sets the caller's confirmation flag. The booking only becomes
// confirmed once both flags are set.
func (s *BookingService) applyConfirm(actor Actor, b *model.Booking) (bool, error) {
	if b.Status == model.BookingStatusConfirmed {
		return false, nil
	}
	if !b.Status.CanTransitionTo(model.BookingStatusConfirmed) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, model.BookingStatusConfirmed)
	}

	before := *b
	switch {
	case actor.IsAdmin():
		b.ParentConfirmed = true
		b.TutorConfirmed = true
	case actor.ID == b.ParentID:
		b.ParentConfirmed = true
	case actor.ID == b.TutorID:
		b.TutorConfirmed = true
	}

	if b.BothConfirmed() {
		b.Status = model.BookingStatusConfirmed
	}

	return b.Status != before.Status ||
		b.ParentConfirmed != before.ParentConfirmed ||
		b.TutorConfirmed != before.TutorConfirmed, nil
}

// applyReschedule moves the lesson and asks the other party to confirm again
func (s *BookingService) applyReschedule(actor Actor, b *model.Booking, change StatusChange) (bool, error) {
	if change.ScheduledAt == nil || change.ScheduledAt.IsZero() {
		return false, fmt.Errorf("%w: new scheduled time is required", ErrValidation)
	}
	if b.Status == model.BookingStatusRescheduled && b.ScheduledAt.Equal(*change.ScheduledAt) {
		return false, nil
	}
	if b.Status != model.BookingStatusRescheduled && !b.Status.CanTransitionTo(model.BookingStatusRescheduled) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, model.BookingStatusRescheduled)
	}
	if !change.ScheduledAt.After(s.now()) {
		return false, fmt.Errorf("%w: new time must be in the future", ErrValidation)
	}

	b.ScheduledAt = *change.ScheduledAt
	b.Status = model.BookingStatusRescheduled
	switch {
	case actor.ID == b.ParentID:
		b.ParentConfirmed, b.TutorConfirmed = true, false
	case actor.ID == b.TutorID:
		b.ParentConfirmed, b.TutorConfirmed = false, true
	default:
		b.ParentConfirmed, b.TutorConfirmed = false, false
	}
	return true, nil
}

// Delete hard-deletes one booking. Child and tutor rows are untouched.
func (s *BookingService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if !actor.IsAdmin() && !booking.IsParty(actor.ID) {
			return ErrNotParty
		}

		// the review and the tutor's rating hang off this row
		reviewed, err := s.bookings.HasReview(ctx, id)
		if err != nil {
			return err
		}
		if reviewed {
			return ErrBookingReviewed
		}

		affected, err := s.bookings.Delete(ctx, id)
		if err != nil {
			return err
		}
		if affected != 1 {
			return fmt.Errorf("delete booking: %d rows affected", affected)
		}

		for _, userID := range booking.Counterparty(actor.ID) {
			n := bookingNotification(userID, model.NotificationBookingDeleted, booking)
			if err := s.notifications.Create(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	s.logger.Info("Booking deleted",
		zap.String("booking_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}
