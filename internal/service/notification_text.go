package service

import (
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
)

const dateTimeLayout = "02 Jan 2006 15:04"

func bookingNotificationType(status model.BookingStatus) model.NotificationType {
	switch status {
	case model.BookingStatusConfirmed:
		return model.NotificationBookingConfirmed
	case model.BookingStatusCancelled:
		return model.NotificationBookingCancelled
	case model.BookingStatusCompleted:
		return model.NotificationBookingCompleted
	case model.BookingStatusRescheduled:
		return model.NotificationBookingRescheduled
	case model.BookingStatusNoShow:
		return model.NotificationBookingNoShow
	}
	return model.NotificationBookingCreated
}

// bookingNotification builds the row written for userID after a change to b
func bookingNotification(userID uuid.UUID, typ model.NotificationType, b *model.Booking) *model.Notification {
	when := b.ScheduledAt.Format(dateTimeLayout)

	var title, msg string
	switch typ {
	case model.NotificationBookingCreated:
		title = "New booking request"
		msg = fmt.Sprintf("%s lesson requested for %s (%d min).", b.Subject, when, b.DurationMinutes)
	case model.NotificationBookingConfirmed:
		if b.Status == model.BookingStatusConfirmed {
			title = "Booking confirmed"
			msg = fmt.Sprintf("%s lesson on %s is confirmed.", b.Subject, when)
		} else {
			title = "Confirmation received"
			msg = fmt.Sprintf("%s lesson on %s is waiting for your confirmation.", b.Subject, when)
		}
	case model.NotificationBookingCancelled:
		title = "Booking cancelled"
		msg = fmt.Sprintf("%s lesson on %s was cancelled.", b.Subject, when)
		if b.CancellationReason != "" {
			msg += " Reason: " + b.CancellationReason
		}
	case model.NotificationBookingCompleted:
		title = "Lesson completed"
		msg = fmt.Sprintf("%s lesson on %s was marked as completed.", b.Subject, when)
	case model.NotificationBookingRescheduled:
		title = "Booking rescheduled"
		msg = fmt.Sprintf("%s lesson moved to %s. Please confirm the new time.", b.Subject, when)
	case model.NotificationBookingNoShow:
		title = "Missed lesson"
		msg = fmt.Sprintf("%s lesson on %s was marked as a no-show.", b.Subject, when)
	case model.NotificationBookingDeleted:
		title = "Booking removed"
		msg = fmt.Sprintf("%s lesson on %s was deleted.", b.Subject, when)
	default:
		title = "Booking updated"
		msg = fmt.Sprintf("%s lesson on %s was updated.", b.Subject, when)
	}

	n := &model.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: msg,
	}
	if typ != model.NotificationBookingDeleted {
		id := b.ID
		n.BookingID = &id
	}
	return n
}

func dbsNotification(rec *model.DBSRecord) *model.Notification {
	n := &model.Notification{UserID: rec.TutorID}

	switch rec.Status {
	case model.DBSStatusVerified:
		n.Type = model.NotificationDBSVerified
		n.Title = "DBS certificate verified"
		n.Message = fmt.Sprintf("Certificate %s is verified until %s.",
			rec.CertificateNumber, rec.ExpiryDate.Format("02 Jan 2006"))
	case model.DBSStatusRejected:
		n.Type = model.NotificationDBSRejected
		n.Title = "DBS certificate rejected"
		n.Message = fmt.Sprintf("Certificate %s was rejected: %s", rec.CertificateNumber, rec.RejectionReason)
	case model.DBSStatusExpired:
		n.Type = model.NotificationDBSExpired
		n.Title = "DBS certificate expired"
		n.Message = fmt.Sprintf("Certificate %s expired on %s. Upload a new one to keep tutoring.",
			rec.CertificateNumber, rec.ExpiryDate.Format("02 Jan 2006"))
	}

	return n
}
