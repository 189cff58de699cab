package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, user_id, type, title, message, booking_id, is_read, delivered_at, created_at`

// PendingDelivery is an undelivered notification together with the chat it goes to
type PendingDelivery struct {
	Notification *model.Notification
	TelegramID   int64
	Attempts     int // failed sends so far
}

type NotificationRepository struct {
	*base.Repository
}

func NewNotificationRepository(b *base.Repository) *NotificationRepository {
	return &NotificationRepository{Repository: b}
}

func scanNotification(row pgx.Row) (*model.Notification, error) {
	var n model.Notification
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.BookingID,
		&n.IsRead,
		&n.DeliveredAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Create inserts a notification row
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, message, booking_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, n.UserID, n.Type, n.Title, n.Message, n.BookingID).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// ListByUser returns the newest notifications of a user
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR is_read = false)
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.Query(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	items, err := base.CollectRows(rows, scanNotification)
	if err != nil {
		return nil, fmt.Errorf("scan notification: %w", err)
	}

	return items, nil
}

// MarkRead marks one notification of the user as read.
// Returns false when no such notification belongs to the user.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	affected, err := r.ExecAffected(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return affected > 0, nil
}

// MarkAllRead marks every unread notification of the user as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	affected, err := r.ExecAffected(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return affected, nil
}

// ListUndelivered returns notifications due for delivery at now to users
// with a linked chat, oldest first. Rows waiting out a retry or given up on
// are skipped.
func (r *NotificationRepository) ListUndelivered(ctx context.Context, now time.Time, limit int) ([]PendingDelivery, error) {
	query := `
		SELECT n.id, n.user_id, n.type, n.title, n.message, n.booking_id, n.is_read, n.delivered_at,
			n.created_at, u.telegram_id, n.delivery_attempts
		FROM notifications n
		JOIN users u ON u.id = n.user_id
		WHERE n.delivered_at IS NULL
			AND n.undeliverable_at IS NULL
			AND n.next_attempt_at <= $1
			AND u.telegram_id IS NOT NULL
		ORDER BY n.created_at ASC
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list undelivered notifications: %w", err)
	}
	defer rows.Close()

	var out []PendingDelivery
	for rows.Next() {
		var (
			n          model.Notification
			telegramID int64
			attempts   int
		)
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.BookingID,
			&n.IsRead,
			&n.DeliveredAt,
			&n.CreatedAt,
			&telegramID,
			&attempts,
		)
		if err != nil {
			return nil, fmt.Errorf("scan undelivered notification: %w", err)
		}
		out = append(out, PendingDelivery{Notification: &n, TelegramID: telegramID, Attempts: attempts})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate undelivered notifications: %w", err)
	}

	return out, nil
}

// MarkDelivered stamps delivered_at
func (r *NotificationRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	if _, err := r.ExecAffected(ctx, `UPDATE notifications SET delivered_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark notification delivered: %w", err)
	}
	return nil
}

// ScheduleRetry counts a failed send and holds the row back until at
func (r *NotificationRepository) ScheduleRetry(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.ExecAffected(ctx, `
		UPDATE notifications
		SET delivery_attempts = delivery_attempts + 1, next_attempt_at = $2
		WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("schedule notification retry: %w", err)
	}
	return nil
}

// MarkUndeliverable counts a failed send and stops further delivery attempts.
// The row stays readable in the web inbox.
func (r *NotificationRepository) MarkUndeliverable(ctx context.Context, id uuid.UUID) error {
	_, err := r.ExecAffected(ctx, `
		UPDATE notifications
		SET delivery_attempts = delivery_attempts + 1, undeliverable_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark notification undeliverable: %w", err)
	}
	return nil
}
