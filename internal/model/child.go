package model

import (
	"time"

	"github.com/google/uuid"
)

// SubjectLevel holds the current and target attainment for one subject
type SubjectLevel struct {
	Current string `json:"current"`
	Target  string `json:"target"`
}

// Child is owned exclusively by one parent profile
type Child struct {
	ID                 uuid.UUID               `json:"id"`
	ParentID           uuid.UUID               `json:"parent_id"`
	FirstName          string                  `json:"first_name"`
	YearGroup          string                  `json:"year_group"`
	SubjectsOfInterest []string                `json:"subjects_of_interest"`
	Levels             map[string]SubjectLevel `json:"levels"`
	CreatedAt          time.Time               `json:"created_at"`
}
