package service

import (
	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
)

// Actor is the caller of a service operation as established by the controller
type Actor struct {
	ID   uuid.UUID
	Role model.UserType
}

func (a Actor) IsAdmin() bool   { return a.Role == model.UserTypeAdmin }
func (a Actor) IsParent() bool  { return a.Role == model.UserTypeParent }
func (a Actor) IsTeacher() bool { return a.Role == model.UserTypeTeacher }
