package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Notifier pushes stored notifications to linked chats
type Notifier struct {
	client messageSender
}

func NewNotifier(client messageSender) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) Send(ctx context.Context, telegramID int64, notification *model.Notification) error {
	params := &bot.SendMessageParams{
		ChatID:    telegramID,
		Text:      formatNotification(notification),
		ParseMode: models.ParseModeHTML,
	}
	if notification.BookingID != nil {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
			{button("📅 My bookings", cbMyBookings)},
		}}
	}

	if _, err := n.client.SendMessage(ctx, params); err != nil {
		if permanent(err) {
			return fmt.Errorf("send notification %s: %w: %w", notification.ID, service.ErrUndeliverable, err)
		}
		return fmt.Errorf("send notification %s: %w", notification.ID, err)
	}
	return nil
}

// permanent reports whether resending the same message can never succeed:
// the user blocked the bot, the chat is gone or the message was rejected.
func permanent(err error) bool {
	return errors.Is(err, bot.ErrorForbidden) ||
		errors.Is(err, bot.ErrorBadRequest) ||
		errors.Is(err, bot.ErrorNotFound)
}
