package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "pending"     // Waiting for tutor confirmation
	BookingStatusConfirmed   BookingStatus = "confirmed"   // Both parties confirmed
	BookingStatusCompleted   BookingStatus = "completed"   // Lesson took place
	BookingStatusCancelled   BookingStatus = "cancelled"   // Cancelled by either party
	BookingStatusRescheduled BookingStatus = "rescheduled" // Moved to a new time, awaiting re-confirmation
	BookingStatusNoShow      BookingStatus = "no_show"     // Child did not attend
)

// bookingTransitions lists the legal target statuses per current status.
// Terminal statuses have no entry.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending: {
		BookingStatusConfirmed,
		BookingStatusCancelled,
		BookingStatusRescheduled,
	},
	BookingStatusConfirmed: {
		BookingStatusCompleted,
		BookingStatusCancelled,
		BookingStatusRescheduled,
		BookingStatusNoShow,
	},
	BookingStatusRescheduled: {
		BookingStatusConfirmed,
		BookingStatusCancelled,
	},
}

// Valid reports whether s is one of the known booking statuses
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusRescheduled, BookingStatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled || s == BookingStatusNoShow
}

// CanTransitionTo checks the transition table
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

type LessonFormat string

const (
	LessonFormatOnline   LessonFormat = "online"
	LessonFormatInPerson LessonFormat = "in_person"
	LessonFormatHybrid   LessonFormat = "hybrid"
)

func (f LessonFormat) Valid() bool {
	return f == LessonFormatOnline || f == LessonFormatInPerson || f == LessonFormatHybrid
}

// Booking is one scheduled tutoring session between a parent's child and a tutor
type Booking struct {
	ID                 uuid.UUID     `json:"id"`
	ParentID           uuid.UUID     `json:"parent_id"`
	TutorID            uuid.UUID     `json:"tutor_id"`
	ChildID            uuid.UUID     `json:"child_id"`
	Subject            string        `json:"subject"`
	ScheduledAt        time.Time     `json:"scheduled_at"`
	DurationMinutes    int           `json:"duration_minutes"`
	Format             LessonFormat  `json:"format"`
	Fee                int           `json:"fee"` // in pence
	Notes              string        `json:"notes,omitempty"`
	Status             BookingStatus `json:"status"`
	ParentConfirmed    bool          `json:"parent_confirmed"`
	TutorConfirmed     bool          `json:"tutor_confirmed"`
	CancelledBy        *uuid.UUID    `json:"cancelled_by,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	// Joined for display, not stored on the row
	Child *Child `json:"child,omitempty"`
	Tutor *User  `json:"tutor,omitempty"`
}

// EndsAt returns the scheduled end of the session
func (b *Booking) EndsAt() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// IsParty reports whether userID is the parent or the tutor of the booking
func (b *Booking) IsParty(userID uuid.UUID) bool {
	return b.ParentID == userID || b.TutorID == userID
}

// Counterparty returns the other side of the booking for the given user.
// For a non-party (admin) both sides are returned.
func (b *Booking) Counterparty(userID uuid.UUID) []uuid.UUID {
	switch userID {
	case b.ParentID:
		return []uuid.UUID{b.TutorID}
	case b.TutorID:
		return []uuid.UUID{b.ParentID}
	}
	return []uuid.UUID{b.ParentID, b.TutorID}
}

// BothConfirmed reports whether parent and tutor have both confirmed
func (b *Booking) BothConfirmed() bool {
	return b.ParentConfirmed && b.TutorConfirmed
}
