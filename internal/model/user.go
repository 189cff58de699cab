package model

import (
	"time"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeParent  UserType = "parent"
	UserTypeTeacher UserType = "teacher"
	UserTypeSchool  UserType = "school"
	UserTypeAdmin   UserType = "admin"
)

// Valid reports whether t is a known profile type
func (t UserType) Valid() bool {
	switch t {
	case UserTypeParent, UserTypeTeacher, UserTypeSchool, UserTypeAdmin:
		return true
	}
	return false
}

// User is the base profile record, specialised by UserType
type User struct {
	ID               uuid.UUID  `json:"id"`
	UserType         UserType   `json:"user_type"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	TelegramID       *int64     `json:"telegram_id,omitempty"`
	TelegramLinkCode *uuid.UUID `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`

	// Tutor profile fields, empty for other user types
	Subjects   []string       `json:"subjects,omitempty"`
	HourlyRate int            `json:"hourly_rate,omitempty"` // in pence
	Formats    []LessonFormat `json:"formats,omitempty"`
	Bio        string         `json:"bio,omitempty"`
	Location   string         `json:"location,omitempty"`
}

func (u *User) IsParent() bool  { return u.UserType == UserTypeParent }
func (u *User) IsTeacher() bool { return u.UserType == UserTypeTeacher }
func (u *User) IsAdmin() bool   { return u.UserType == UserTypeAdmin }

// FullName returns "First Last" without stray spaces
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasTelegram reports whether a chat is linked for notification delivery
func (u *User) HasTelegram() bool {
	return u.TelegramID != nil && *u.TelegramID != 0
}

// TeachesSubject matches subject case-insensitively against the tutor's subjects
func (u *User) TeachesSubject(subject string) bool {
	for _, s := range u.Subjects {
		if equalFold(s, subject) {
			return true
		}
	}
	return false
}

// OffersFormat reports whether the tutor offers lessons in format f
func (u *User) OffersFormat(f LessonFormat) bool {
	for _, x := range u.Formats {
		if x == f || x == LessonFormatHybrid {
			return true
		}
	}
	return false
}
