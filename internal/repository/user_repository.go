package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, user_type, email, first_name, last_name, telegram_id, telegram_link_code,
	subjects, hourly_rate, formats, bio, location, created_at`

// UserRepository reads profiles. Profiles are provisioned by the identity
// provider; this service only links chats and reads tutor data.
type UserRepository struct {
	*base.Repository
}

func NewUserRepository(b *base.Repository) *UserRepository {
	return &UserRepository{Repository: b}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		user    model.User
		formats []string
	)
	err := row.Scan(
		&user.ID,
		&user.UserType,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.TelegramID,
		&user.TelegramLinkCode,
		&user.Subjects,
		&user.HourlyRate,
		&formats,
		&user.Bio,
		&user.Location,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, f := range formats {
		user.Formats = append(user.Formats, model.LessonFormat(f))
	}
	return &user, nil
}

// GetByID returns the profile or nil when it does not exist
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := scanUser(r.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByTelegramID returns the profile linked to a Telegram account
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := scanUser(r.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}

	return user, nil
}

// GetByLinkCode returns the profile holding a one-time Telegram link code
func (r *UserRepository) GetByLinkCode(ctx context.Context, code uuid.UUID) (*model.User, error) {
	user, err := scanUser(r.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_link_code = $1`, code))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by link code: %w", err)
	}

	return user, nil
}

// SetLinkCode stores a fresh one-time code for linking a Telegram chat
func (r *UserRepository) SetLinkCode(ctx context.Context, userID uuid.UUID, code uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `UPDATE users SET telegram_link_code = $1 WHERE id = $2`, code, userID)
	if err != nil {
		return fmt.Errorf("set link code: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// LinkTelegram binds the chat and consumes the link code. Any other profile
// previously linked to the same chat is unlinked first.
func (r *UserRepository) LinkTelegram(ctx context.Context, userID uuid.UUID, telegramID int64) error {
	if _, err := r.ExecAffected(ctx,
		`UPDATE users SET telegram_id = NULL WHERE telegram_id = $1 AND id <> $2`, telegramID, userID); err != nil {
		return fmt.Errorf("unlink previous telegram owner: %w", err)
	}

	affected, err := r.ExecAffected(ctx,
		`UPDATE users SET telegram_id = $1, telegram_link_code = NULL WHERE id = $2`, telegramID, userID)
	if err != nil {
		return fmt.Errorf("link telegram: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// ListTutors returns every teacher profile ordered by name
func (r *UserRepository) ListTutors(ctx context.Context) ([]*model.User, error) {
	rows, err := r.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_type = $1 ORDER BY first_name, last_name`,
		model.UserTypeTeacher)
	if err != nil {
		return nil, fmt.Errorf("list tutors: %w", err)
	}

	tutors, err := base.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("scan tutor: %w", err)
	}

	return tutors, nil
}
