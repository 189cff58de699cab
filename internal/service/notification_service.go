package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200

	// failed deliveries retry after 1, 2, 4 and 8 minutes, then are dropped
	maxDeliveryAttempts = 5
	deliveryRetryBase   = time.Minute
)

type NotificationStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	ListUndelivered(ctx context.Context, now time.Time, limit int) ([]repository.PendingDelivery, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	ScheduleRetry(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkUndeliverable(ctx context.Context, id uuid.UUID) error
}

// Sender delivers one notification to a Telegram chat. It wraps
// ErrUndeliverable when the chat can never receive the message.
type Sender interface {
	Send(ctx context.Context, telegramID int64, n *model.Notification) error
}

type NotificationService struct {
	notifications NotificationStore
	sender        Sender
	logger        *zap.Logger
	now           func() time.Time
}

func NewNotificationService(notifications NotificationStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger, now: time.Now}
}

// SetSender installs the delivery channel. Without one DispatchPending does nothing.
func (s *NotificationService) SetSender(sender Sender) {
	s.sender = sender
}

// List returns the actor's newest notifications
func (s *NotificationService) List(ctx context.Context, actor Actor, unreadOnly bool, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	return s.notifications.ListByUser(ctx, actor.ID, unreadOnly, limit)
}

// MarkRead marks one of the actor's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	ok, err := s.notifications.MarkRead(ctx, actor.ID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every notification of the actor as read
func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	return s.notifications.MarkAllRead(ctx, actor.ID)
}

// DispatchPending pushes up to limit due notifications through the sender.
// A failed send is retried later with backoff so it does not hold up the
// rows behind it. Returns the number delivered.
func (s *NotificationService) DispatchPending(ctx context.Context, limit int) (int, error) {
	if s.sender == nil {
		return 0, nil
	}

	pending, err := s.notifications.ListUndelivered(ctx, s.now(), limit)
	if err != nil {
		return 0, fmt.Errorf("list undelivered: %w", err)
	}

	delivered := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		if err := s.sender.Send(ctx, p.TelegramID, p.Notification); err != nil {
			if ctx.Err() != nil {
				return delivered, ctx.Err()
			}
			if err := s.deferDelivery(ctx, p, err); err != nil {
				return delivered, err
			}
			continue
		}

		if err := s.notifications.MarkDelivered(ctx, p.Notification.ID); err != nil {
			return delivered, err
		}
		delivered++
	}

	if delivered > 0 {
		s.logger.Debug("Notifications delivered", zap.Int("count", delivered))
	}
	return delivered, nil
}

func (s *NotificationService) deferDelivery(ctx context.Context, p repository.PendingDelivery, sendErr error) error {
	attempt := p.Attempts + 1
	fields := []zap.Field{
		zap.String("notification_id", p.Notification.ID.String()),
		zap.Int64("telegram_id", p.TelegramID),
		zap.Int("attempt", attempt),
		zap.Error(sendErr),
	}

	if errors.Is(sendErr, ErrUndeliverable) || attempt >= maxDeliveryAttempts {
		s.logger.Warn("Giving up on notification delivery", fields...)
		if err := s.notifications.MarkUndeliverable(ctx, p.Notification.ID); err != nil {
			return fmt.Errorf("mark undeliverable: %w", err)
		}
		return nil
	}

	retryAt := s.now().Add(deliveryRetryBase << p.Attempts)
	s.logger.Warn("Failed to deliver notification", append(fields, zap.Time("retry_at", retryAt))...)
	if err := s.notifications.ScheduleRetry(ctx, p.Notification.ID, retryAt); err != nil {
		return fmt.Errorf("schedule retry: %w", err)
	}
	return nil
}
