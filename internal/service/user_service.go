package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByLinkCode(ctx context.Context, code uuid.UUID) (*model.User, error)
	SetLinkCode(ctx context.Context, userID uuid.UUID, code uuid.UUID) error
	LinkTelegram(ctx context.Context, userID uuid.UUID, telegramID int64) error
	ListTutors(ctx context.Context) ([]*model.User, error)
}

type UserService struct {
	tx     TxRunner
	users  UserStore
	logger *zap.Logger
}

func NewUserService(tx TxRunner, users UserStore, logger *zap.Logger) *UserService {
	return &UserService{
		tx:     tx,
		users:  users,
		logger: logger,
	}
}

// GetByID returns the profile or ErrUserNotFound
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetByTelegramID returns the profile linked to a chat, or nil if the chat is not linked
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}

// IssueLinkCode generates a fresh one-time code the user sends to the bot
// with /start. A previous unused code stops working.
func (s *UserService) IssueLinkCode(ctx context.Context, actor Actor) (uuid.UUID, error) {
	code := uuid.New()
	if err := s.users.SetLinkCode(ctx, actor.ID, code); err != nil {
		return uuid.Nil, fmt.Errorf("issue link code: %w", err)
	}

	s.logger.Info("Telegram link code issued", zap.String("user_id", actor.ID.String()))
	return code, nil
}

// LinkTelegram consumes a link code and binds the chat to its owner
func (s *UserService) LinkTelegram(ctx context.Context, code uuid.UUID, telegramID int64) (*model.User, error) {
	var user *model.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByLinkCode(ctx, code)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrInvalidLinkCode
		}
		if err := s.users.LinkTelegram(ctx, user.ID, telegramID); err != nil {
			return err
		}
		user.TelegramID = &telegramID
		user.TelegramLinkCode = nil
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("link telegram: %w", err)
	}

	s.logger.Info("Telegram linked",
		zap.String("user_id", user.ID.String()),
		zap.Int64("telegram_id", telegramID))

	return user, nil
}

// ListTutors returns every tutor profile
func (s *UserService) ListTutors(ctx context.Context) ([]*model.User, error) {
	return s.users.ListTutors(ctx)
}
