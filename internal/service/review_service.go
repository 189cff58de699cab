package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxReviewComment = 2000

type ReviewStore interface {
	Create(ctx context.Context, rv *model.Review) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Review, error)
	ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.Review, error)
	RatingsByTutors(ctx context.Context, tutorIDs []uuid.UUID) (map[uuid.UUID]model.TutorRating, error)
}

type BookingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
}

type CreateReviewInput struct {
	BookingID uuid.UUID
	Rating    int
	Comment   string
}

type ReviewService struct {
	tx            TxRunner
	reviews       ReviewStore
	bookings      BookingReader
	notifications NotificationWriter
	logger        *zap.Logger
}

func NewReviewService(
	tx TxRunner,
	reviews ReviewStore,
	bookings BookingReader,
	notifications NotificationWriter,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		tx:            tx,
		reviews:       reviews,
		bookings:      bookings,
		notifications: notifications,
		logger:        logger,
	}
}

// Create stores the parent's review of a completed booking and notifies the tutor
func (s *ReviewService) Create(ctx context.Context, actor Actor, in CreateReviewInput) (*model.Review, error) {
	if !actor.IsParent() {
		return nil, fmt.Errorf("%w: only parents can leave reviews", ErrForbiddenAction)
	}
	if in.Rating < model.MinRating || in.Rating > model.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, model.MinRating, model.MaxRating)
	}
	in.Comment = strings.TrimSpace(in.Comment)
	if len(in.Comment) > maxReviewComment {
		return nil, fmt.Errorf("%w: comment is longer than %d characters", ErrValidation, maxReviewComment)
	}

	booking, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.ParentID != actor.ID {
		return nil, ErrNotParty
	}
	if booking.Status != model.BookingStatusCompleted {
		return nil, fmt.Errorf("%w: only completed lessons can be reviewed", ErrInvalidTransition)
	}

	review := &model.Review{
		BookingID: booking.ID,
		ParentID:  actor.ID,
		TutorID:   booking.TutorID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.reviews.GetByBookingID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyReviewed
		}
		if err := s.reviews.Create(ctx, review); err != nil {
			// a concurrent submission won the insert
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyReviewed
			}
			return err
		}

		bookingID := booking.ID
		return s.notifications.Create(ctx, &model.Notification{
			UserID:    booking.TutorID,
			Type:      model.NotificationNewReview,
			Title:     "New review",
			Message:   fmt.Sprintf("You received a %d-star review for a %s lesson.", review.Rating, booking.Subject),
			BookingID: &bookingID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("tutor_id", review.TutorID.String()),
		zap.Int("rating", review.Rating))

	return review, nil
}

// ListForTutor returns the tutor's reviews and aggregate rating
func (s *ReviewService) ListForTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.Review, model.TutorRating, error) {
	reviews, err := s.reviews.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, model.TutorRating{}, err
	}

	rating := model.TutorRating{TutorID: tutorID, Count: len(reviews)}
	if len(reviews) > 0 {
		sum := 0
		for _, rv := range reviews {
			sum += rv.Rating
		}
		rating.Average = float64(sum) / float64(len(reviews))
	}

	return reviews, rating, nil
}

// TutorRating returns the aggregate rating of one tutor
func (s *ReviewService) TutorRating(ctx context.Context, tutorID uuid.UUID) (model.TutorRating, error) {
	ratings, err := s.reviews.RatingsByTutors(ctx, []uuid.UUID{tutorID})
	if err != nil {
		return model.TutorRating{}, err
	}
	if r, ok := ratings[tutorID]; ok {
		return r, nil
	}
	return model.TutorRating{TutorID: tutorID}, nil
}
