package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const childColumns = `id, parent_id, first_name, year_group, subjects_of_interest, levels, created_at`

type ChildRepository struct {
	*base.Repository
}

func NewChildRepository(b *base.Repository) *ChildRepository {
	return &ChildRepository{Repository: b}
}

func scanChild(row pgx.Row) (*model.Child, error) {
	var c model.Child
	err := row.Scan(
		&c.ID,
		&c.ParentID,
		&c.FirstName,
		&c.YearGroup,
		&c.SubjectsOfInterest,
		&c.Levels,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Levels == nil {
		c.Levels = map[string]model.SubjectLevel{}
	}
	return &c, nil
}

// Create inserts a child profile
func (r *ChildRepository) Create(ctx context.Context, child *model.Child) error {
	query := `
		INSERT INTO children (parent_id, first_name, year_group, subjects_of_interest, levels)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		child.ParentID,
		child.FirstName,
		child.YearGroup,
		child.SubjectsOfInterest,
		child.Levels,
	).Scan(&child.ID, &child.CreatedAt)

	if err != nil {
		return fmt.Errorf("create child: %w", err)
	}

	return nil
}

// GetByID returns the child or nil when it does not exist
func (r *ChildRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Child, error) {
	child, err := scanChild(r.QueryRow(ctx, `SELECT `+childColumns+` FROM children WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get child by id: %w", err)
	}

	return child, nil
}

// ListByParent returns the children of one parent ordered by name
func (r *ChildRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*model.Child, error) {
	rows, err := r.Query(ctx,
		`SELECT `+childColumns+` FROM children WHERE parent_id = $1 ORDER BY first_name`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}

	children, err := base.CollectRows(rows, scanChild)
	if err != nil {
		return nil, fmt.Errorf("scan child: %w", err)
	}

	return children, nil
}

// Update rewrites the editable fields
func (r *ChildRepository) Update(ctx context.Context, child *model.Child) error {
	query := `
		UPDATE children
		SET first_name = $1, year_group = $2, subjects_of_interest = $3, levels = $4
		WHERE id = $5
	`

	affected, err := r.ExecAffected(
		ctx, query,
		child.FirstName,
		child.YearGroup,
		child.SubjectsOfInterest,
		child.Levels,
		child.ID,
	)
	if err != nil {
		return fmt.Errorf("update child: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("child not found")
	}

	return nil
}

// CountBookings counts the bookings still referencing the child
func (r *ChildRepository) CountBookings(ctx context.Context, childID uuid.UUID) (int, error) {
	var n int
	if err := r.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE child_id = $1`, childID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count child bookings: %w", err)
	}
	return n, nil
}

// Delete removes the child row
func (r *ChildRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM children WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("child not found")
	}

	return nil
}
