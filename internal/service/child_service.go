package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChildStore interface {
	Create(ctx context.Context, child *model.Child) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Child, error)
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*model.Child, error)
	Update(ctx context.Context, child *model.Child) error
	CountBookings(ctx context.Context, childID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChildInput holds the editable child profile fields
type ChildInput struct {
	FirstName          string
	YearGroup          string
	SubjectsOfInterest []string
	Levels             map[string]model.SubjectLevel
}

type ChildService struct {
	children ChildStore
	logger   *zap.Logger
}

func NewChildService(children ChildStore, logger *zap.Logger) *ChildService {
	return &ChildService{children: children, logger: logger}
}

func (in ChildInput) normalize() (ChildInput, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	if in.FirstName == "" {
		return in, fmt.Errorf("%w: first name is required", ErrValidation)
	}
	in.YearGroup = strings.TrimSpace(in.YearGroup)

	subjects := make([]string, 0, len(in.SubjectsOfInterest))
	seen := make(map[string]bool)
	for _, s := range in.SubjectsOfInterest {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		subjects = append(subjects, s)
	}
	in.SubjectsOfInterest = subjects

	if in.Levels == nil {
		in.Levels = map[string]model.SubjectLevel{}
	}
	return in, nil
}

// Create adds a child to the parent's profile
func (s *ChildService) Create(ctx context.Context, actor Actor, in ChildInput) (*model.Child, error) {
	if !actor.IsParent() {
		return nil, fmt.Errorf("%w: only parents can add children", ErrForbiddenAction)
	}

	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	child := &model.Child{
		ParentID:           actor.ID,
		FirstName:          in.FirstName,
		YearGroup:          in.YearGroup,
		SubjectsOfInterest: in.SubjectsOfInterest,
		Levels:             in.Levels,
	}
	if err := s.children.Create(ctx, child); err != nil {
		return nil, err
	}

	s.logger.Info("Child created",
		zap.String("child_id", child.ID.String()),
		zap.String("parent_id", actor.ID.String()))

	return child, nil
}

// List returns the actor's children
func (s *ChildService) List(ctx context.Context, actor Actor) ([]*model.Child, error) {
	if !actor.IsParent() {
		return nil, fmt.Errorf("%w: only parents have children", ErrForbiddenAction)
	}
	return s.children.ListByParent(ctx, actor.ID)
}

// Get returns a child owned by the actor; admins may read any child
func (s *ChildService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Child, error) {
	child, err := s.children.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if child.ParentID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}
	return child, nil
}

// Update rewrites the child profile
func (s *ChildService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ChildInput) (*model.Child, error) {
	child, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	in, err = in.normalize()
	if err != nil {
		return nil, err
	}

	child.FirstName = in.FirstName
	child.YearGroup = in.YearGroup
	child.SubjectsOfInterest = in.SubjectsOfInterest
	child.Levels = in.Levels

	if err := s.children.Update(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

// Delete removes a child without bookings
func (s *ChildService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	child, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}

	n, err := s.children.CountBookings(ctx, child.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrChildHasBookings
	}

	if err := s.children.Delete(ctx, child.ID); err != nil {
		return err
	}

	s.logger.Info("Child deleted",
		zap.String("child_id", id.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}
