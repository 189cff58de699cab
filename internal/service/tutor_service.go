package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service/views"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TutorLister interface {
	ListTutors(ctx context.Context) ([]*model.User, error)
}

type RatingReader interface {
	RatingsByTutors(ctx context.Context, tutorIDs []uuid.UUID) (map[uuid.UUID]model.TutorRating, error)
}

type DBSLister interface {
	ListByTutors(ctx context.Context, tutorIDs []uuid.UUID) ([]*model.DBSRecord, error)
}

// TutorService serves the tutor directory
type TutorService struct {
	users   TutorLister
	ratings RatingReader
	dbs     DBSLister
	logger  *zap.Logger
	now     func() time.Time
}

func NewTutorService(users TutorLister, ratings RatingReader, dbs DBSLister, logger *zap.Logger) *TutorService {
	return &TutorService{
		users:   users,
		ratings: ratings,
		dbs:     dbs,
		logger:  logger,
		now:     time.Now,
	}
}

// Search loads every tutor with their ratings and certificates and applies f
func (s *TutorService) Search(ctx context.Context, f views.TutorFilter) ([]views.TutorResult, error) {
	if f.Format != "" && !f.Format.Valid() {
		return nil, fmt.Errorf("%w: unknown lesson format %q", ErrValidation, f.Format)
	}
	if f.MinRating < 0 || f.MinRating > model.MaxRating {
		return nil, fmt.Errorf("%w: min rating must be between 0 and %d", ErrValidation, model.MaxRating)
	}

	tutors, err := s.users.ListTutors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tutors: %w", err)
	}
	if len(tutors) == 0 {
		return []views.TutorResult{}, nil
	}

	ids := make([]uuid.UUID, 0, len(tutors))
	for _, t := range tutors {
		ids = append(ids, t.ID)
	}

	ratings, err := s.ratings.RatingsByTutors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	records, err := s.dbs.ListByTutors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load dbs records: %w", err)
	}

	results := views.SearchTutors(tutors, ratings, records, f, s.now())
	s.logger.Debug("Tutor search",
		zap.String("subject", f.Subject),
		zap.Int("tutors", len(tutors)),
		zap.Int("results", len(results)))

	return results, nil
}
