package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/Freeeeeet/tutorhub/internal/service/views"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxListedBookings      = 10
	maxListedNotifications = 10
)

// HandleStart links the chat when a code is given, otherwise greets a
// linked user or explains how to link.
func (c *Controller) HandleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID

	args := strings.Fields(update.Message.Text)
	if len(args) < 2 {
		user, err := c.users.GetByTelegramID(ctx, telegramID)
		if err != nil {
			c.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
			c.sendMessage(ctx, chatID, msgInternalError, nil)
			return
		}
		if user == nil {
			c.sendMessage(ctx, chatID, msgNotLinked, nil)
			return
		}
		c.sendMessage(ctx, chatID, fmt.Sprintf("👋 Welcome back, %s!\n\n%s",
			html.EscapeString(user.FirstName), msgHelp), nil)
		return
	}

	code, err := uuid.Parse(args[1])
	if err != nil {
		c.sendMessage(ctx, chatID, "❌ That link code is not valid. Copy it again from your dashboard.", nil)
		return
	}

	user, err := c.users.LinkTelegram(ctx, code, telegramID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLinkCode) {
			c.sendMessage(ctx, chatID, "❌ That link code is unknown or was already used. Request a new one.", nil)
			return
		}
		c.logger.Error("Failed to link telegram", zap.Int64("telegram_id", telegramID), zap.Error(err))
		c.sendMessage(ctx, chatID, msgInternalError, nil)
		return
	}

	c.logger.Info("Telegram chat linked",
		zap.String("user_id", user.ID.String()),
		zap.Int64("telegram_id", telegramID))

	c.sendMessage(ctx, chatID, fmt.Sprintf("✅ Linked! Hi %s, you'll get booking updates here.\n\n%s",
		html.EscapeString(user.FirstName), msgHelp), nil)
}

func (c *Controller) HandleHelp(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.sendMessage(ctx, update.Message.Chat.ID, msgHelp, nil)
}

// HandleMyBookings sends the next upcoming lessons, one message each with
// the actions available to the caller.
func (c *Controller) HandleMyBookings(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	c.sendUpcoming(ctx, update.Message.Chat.ID, update.Message.From.ID)
}

func (c *Controller) sendUpcoming(ctx context.Context, chatID, telegramID int64) {
	actor, ok := c.actorFor(ctx, chatID, telegramID)
	if !ok {
		return
	}

	bookings, err := c.bookings.ListForActor(ctx, actor)
	if err != nil {
		c.logger.Error("Failed to list bookings", zap.String("user_id", actor.ID.String()), zap.Error(err))
		c.sendMessage(ctx, chatID, msgInternalError, nil)
		return
	}

	upcoming, _ := views.SplitUpcoming(bookings, c.now())
	if len(upcoming) == 0 {
		c.sendMessage(ctx, chatID, "📅 You have no upcoming lessons.", nil)
		return
	}

	header := fmt.Sprintf("📅 <b>Upcoming lessons</b> (%d)", len(upcoming))
	if len(upcoming) > maxListedBookings {
		header += fmt.Sprintf("\nShowing the next %d.", maxListedBookings)
		upcoming = upcoming[:maxListedBookings]
	}
	c.sendMessage(ctx, chatID, header, nil)

	for _, b := range upcoming {
		if kb := bookingKeyboard(actor, b); kb != nil {
			c.sendMessage(ctx, chatID, formatBooking(b), kb)
		} else {
			c.sendMessage(ctx, chatID, formatBooking(b), nil)
		}
	}
}

// HandleNotifications lists unread notifications with a button to mark them read
func (c *Controller) HandleNotifications(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	actor, ok := c.actorFor(ctx, chatID, update.Message.From.ID)
	if !ok {
		return
	}

	items, err := c.notifications.List(ctx, actor, true, maxListedNotifications)
	if err != nil {
		c.logger.Error("Failed to list notifications", zap.String("user_id", actor.ID.String()), zap.Error(err))
		c.sendMessage(ctx, chatID, msgInternalError, nil)
		return
	}
	if len(items) == 0 {
		c.sendMessage(ctx, chatID, "🔔 No unread notifications.", nil)
		return
	}

	parts := make([]string, 0, len(items))
	for _, n := range items {
		parts = append(parts, formatNotification(n))
	}

	kb := &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{button("👌 Mark all read", cbReadAll)},
	}}
	c.sendMessage(ctx, chatID, strings.Join(parts, "\n\n"), kb)
}
