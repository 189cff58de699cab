package telegram

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// API is the part of the Telegram client the controller talks to.
// *bot.Bot satisfies it.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

type UserAPI interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	LinkTelegram(ctx context.Context, code uuid.UUID, telegramID int64) (*model.User, error)
}

type BookingAPI interface {
	ListForActor(ctx context.Context, actor service.Actor) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, actor service.Actor, id uuid.UUID, change service.StatusChange) (*model.Booking, error)
}

type NotificationAPI interface {
	List(ctx context.Context, actor service.Actor, unreadOnly bool, limit int) ([]*model.Notification, error)
	MarkAllRead(ctx context.Context, actor service.Actor) (int64, error)
}

type Controller struct {
	api           API
	users         UserAPI
	bookings      BookingAPI
	notifications NotificationAPI
	logger        *zap.Logger
	now           func() time.Time
}

func NewController(
	api API,
	users UserAPI,
	bookings BookingAPI,
	notifications NotificationAPI,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		api:           api,
		users:         users,
		bookings:      bookings,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

// Register installs the command and callback handlers on b and publishes the command menu
func (c *Controller) Register(ctx context.Context, b *bot.Bot) error {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, c.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.HandleHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/mybookings", bot.MatchTypeExact, c.HandleMyBookings)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/notifications", bot.MatchTypeExact, c.HandleNotifications)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.HandleCallbackQuery)

	return c.setCommands(ctx, b)
}

func (c *Controller) setCommands(ctx context.Context, b *bot.Bot) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🔗 Link your account"},
		{Command: "mybookings", Description: "📅 Upcoming lessons"},
		{Command: "notifications", Description: "🔔 Unread notifications"},
		{Command: "help", Description: "❓ Help"},
	}

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands}); err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Run starts long polling and blocks until ctx is cancelled
func Run(ctx context.Context, b *bot.Bot, logger *zap.Logger) error {
	logger.Info("Starting bot")
	b.Start(ctx)
	logger.Info("Bot stopped")
	return nil
}

// actorFor resolves the linked profile of a chat. It returns false after
// telling the user to link when the chat is unknown.
func (c *Controller) actorFor(ctx context.Context, chatID, telegramID int64) (service.Actor, bool) {
	user, err := c.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		c.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		c.sendMessage(ctx, chatID, msgInternalError, nil)
		return service.Actor{}, false
	}
	if user == nil {
		c.sendMessage(ctx, chatID, msgNotLinked, nil)
		return service.Actor{}, false
	}
	return actorOf(user), true
}

func actorOf(user *model.User) service.Actor {
	return service.Actor{ID: user.ID, Role: user.UserType}
}

func (c *Controller) sendMessage(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := c.api.SendMessage(ctx, params); err != nil {
		c.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
