package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationBookingCreated     NotificationType = "booking_created"
	NotificationBookingConfirmed   NotificationType = "booking_confirmed"
	NotificationBookingCancelled   NotificationType = "booking_cancelled"
	NotificationBookingCompleted   NotificationType = "booking_completed"
	NotificationBookingRescheduled NotificationType = "booking_rescheduled"
	NotificationBookingNoShow      NotificationType = "booking_no_show"
	NotificationBookingDeleted     NotificationType = "booking_deleted"
	NotificationDBSVerified        NotificationType = "dbs_verified"
	NotificationDBSRejected        NotificationType = "dbs_rejected"
	NotificationDBSExpired         NotificationType = "dbs_expired"
	NotificationNewReview          NotificationType = "new_review"
)

type Notification struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	BookingID   *uuid.UUID       `json:"booking_id,omitempty"`
	IsRead      bool             `json:"is_read"`
	DeliveredAt *time.Time       `json:"delivered_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
