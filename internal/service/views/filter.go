package views

import (
	"strings"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
)

// BookingFilter narrows a booking list. Zero values match everything.
// From is inclusive, To is exclusive.
type BookingFilter struct {
	ChildID  uuid.UUID
	Subject  string
	Statuses []model.BookingStatus
	From     time.Time
	To       time.Time
}

func (f BookingFilter) matches(b *model.Booking) bool {
	if f.ChildID != uuid.Nil && b.ChildID != f.ChildID {
		return false
	}
	if s := strings.TrimSpace(f.Subject); s != "" && !strings.EqualFold(s, strings.TrimSpace(b.Subject)) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, b.Status) {
		return false
	}
	if !f.From.IsZero() && b.ScheduledAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !b.ScheduledAt.Before(f.To) {
		return false
	}
	return true
}

// FilterBookings returns the bookings matching f, preserving order
func FilterBookings(bookings []*model.Booking, f BookingFilter) []*model.Booking {
	out := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if f.matches(b) {
			out = append(out, b)
		}
	}
	return out
}

func containsStatus(list []model.BookingStatus, s model.BookingStatus) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
