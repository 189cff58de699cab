package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reviewColumns = `id, booking_id, parent_id, tutor_id, rating, comment, created_at`

type ReviewRepository struct {
	*base.Repository
}

func NewReviewRepository(b *base.Repository) *ReviewRepository {
	return &ReviewRepository{Repository: b}
}

func scanReview(row pgx.Row) (*model.Review, error) {
	var rv model.Review
	err := row.Scan(&rv.ID, &rv.BookingID, &rv.ParentID, &rv.TutorID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// Create inserts a review. A second review for the same booking returns ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, rv *model.Review) error {
	query := `
		INSERT INTO reviews (booking_id, parent_id, tutor_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, rv.BookingID, rv.ParentID, rv.TutorID, rv.Rating, rv.Comment).
		Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create review: %w", ErrDuplicate)
		}
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

// GetByBookingID returns the review for a booking or nil
func (r *ReviewRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Review, error) {
	rv, err := scanReview(r.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE booking_id = $1`, bookingID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review by booking: %w", err)
	}

	return rv, nil
}

// ListByTutor returns a tutor's reviews, newest first
func (r *ReviewRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.Review, error) {
	rows, err := r.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE tutor_id = $1 ORDER BY created_at DESC`, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	reviews, err := base.CollectRows(rows, scanReview)
	if err != nil {
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return reviews, nil
}

// RatingsByTutors aggregates average rating and count per tutor
func (r *ReviewRepository) RatingsByTutors(ctx context.Context, tutorIDs []uuid.UUID) (map[uuid.UUID]model.TutorRating, error) {
	out := make(map[uuid.UUID]model.TutorRating, len(tutorIDs))
	if len(tutorIDs) == 0 {
		return out, nil
	}

	rows, err := r.Query(ctx, `
		SELECT tutor_id, avg(rating)::float8, count(*)
		FROM reviews
		WHERE tutor_id = ANY($1)
		GROUP BY tutor_id
	`, tutorIDs)
	if err != nil {
		return nil, fmt.Errorf("tutor ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tr model.TutorRating
		if err := rows.Scan(&tr.TutorID, &tr.Average, &tr.Count); err != nil {
			return nil, fmt.Errorf("scan tutor rating: %w", err)
		}
		out[tr.TutorID] = tr
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tutor ratings: %w", err)
	}

	return out, nil
}
