package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a parent's rating of a tutor after a completed booking
type Review struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	ParentID  uuid.UUID `json:"parent_id"`
	TutorID   uuid.UUID `json:"tutor_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// TutorRating aggregates the reviews of one tutor
type TutorRating struct {
	TutorID uuid.UUID `json:"tutor_id"`
	Average float64   `json:"average"`
	Count   int       `json:"count"`
}
