package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Callback data prefixes
const (
	cbConfirm    = "bk_confirm:"  // bk_confirm:<booking uuid>
	cbCancel     = "bk_cancel:"   // bk_cancel:<booking uuid>
	cbComplete   = "bk_complete:" // bk_complete:<booking uuid>
	cbReadAll    = "nt_readall"
	cbMyBookings = "my_bookings"
)

var callbackStatuses = map[string]model.BookingStatus{
	cbConfirm:  model.BookingStatusConfirmed,
	cbCancel:   model.BookingStatusCancelled,
	cbComplete: model.BookingStatusCompleted,
}

var callbackDone = map[model.BookingStatus]string{
	model.BookingStatusConfirmed: "✅ Confirmed",
	model.BookingStatusCancelled: "❌ Booking cancelled",
	model.BookingStatusCompleted: "✔️ Marked as completed",
}

// parseBookingCallback splits "bk_confirm:<id>" into the requested status and booking id
func parseBookingCallback(data string) (model.BookingStatus, uuid.UUID, error) {
	for prefix, status := range callbackStatuses {
		if !strings.HasPrefix(data, prefix) {
			continue
		}
		id, err := uuid.Parse(strings.TrimPrefix(data, prefix))
		if err != nil {
			return "", uuid.Nil, fmt.Errorf("invalid booking id in callback %q: %w", data, err)
		}
		return status, id, nil
	}
	return "", uuid.Nil, fmt.Errorf("unknown callback %q", data)
}

// HandleCallbackQuery routes inline button presses
func (c *Controller) HandleCallbackQuery(ctx context.Context, _ *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	c.logger.Debug("Routing callback",
		zap.String("data", callback.Data),
		zap.Int64("telegram_id", callback.From.ID))

	switch {
	case callback.Data == cbReadAll:
		c.handleReadAll(ctx, callback)
	case callback.Data == cbMyBookings:
		c.answer(ctx, callback.ID, "", false)
		if msg := callback.Message.Message; msg != nil {
			c.sendUpcoming(ctx, msg.Chat.ID, callback.From.ID)
		}
	case strings.HasPrefix(callback.Data, "bk_"):
		c.handleBookingAction(ctx, callback)
	default:
		c.logger.Warn("Unknown callback", zap.String("data", callback.Data))
		c.answer(ctx, callback.ID, "", false)
	}
}

func (c *Controller) handleBookingAction(ctx context.Context, callback *models.CallbackQuery) {
	status, bookingID, err := parseBookingCallback(callback.Data)
	if err != nil {
		c.logger.Warn("Bad booking callback", zap.Error(err))
		c.answer(ctx, callback.ID, "❌ Invalid request", true)
		return
	}

	actor, ok := c.callbackActor(ctx, callback)
	if !ok {
		return
	}

	change := service.StatusChange{Status: status}
	if status == model.BookingStatusCancelled {
		change.Reason = "Cancelled via Telegram"
	}

	booking, err := c.bookings.UpdateStatus(ctx, actor, bookingID, change)
	if err != nil {
		c.logger.Warn("Booking action failed",
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
			zap.String("user_id", actor.ID.String()),
			zap.Error(err))
		c.answer(ctx, callback.ID, errorMessage(err), true)
		return
	}

	done := callbackDone[status]
	if status == model.BookingStatusConfirmed && booking.Status != model.BookingStatusConfirmed {
		done = "✅ Your confirmation is recorded"
	}
	c.answer(ctx, callback.ID, done, false)

	if msg := callback.Message.Message; msg != nil {
		params := &bot.EditMessageTextParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			Text:      formatBooking(booking),
			ParseMode: models.ParseModeHTML,
		}
		if kb := bookingKeyboard(actor, booking); kb != nil {
			params.ReplyMarkup = kb
		}
		if _, err := c.api.EditMessageText(ctx, params); err != nil {
			c.logger.Error("Failed to update booking message", zap.Error(err))
		}
	}
}

func (c *Controller) handleReadAll(ctx context.Context, callback *models.CallbackQuery) {
	actor, ok := c.callbackActor(ctx, callback)
	if !ok {
		return
	}

	n, err := c.notifications.MarkAllRead(ctx, actor)
	if err != nil {
		c.logger.Error("Failed to mark notifications read", zap.String("user_id", actor.ID.String()), zap.Error(err))
		c.answer(ctx, callback.ID, errorMessage(err), true)
		return
	}

	c.answer(ctx, callback.ID, fmt.Sprintf("👌 %d marked as read", n), false)
}

func (c *Controller) callbackActor(ctx context.Context, callback *models.CallbackQuery) (service.Actor, bool) {
	user, err := c.users.GetByTelegramID(ctx, callback.From.ID)
	if err != nil {
		c.logger.Error("Failed to get user", zap.Int64("telegram_id", callback.From.ID), zap.Error(err))
		c.answer(ctx, callback.ID, errorMessage(err), true)
		return service.Actor{}, false
	}
	if user == nil {
		c.answer(ctx, callback.ID, "🔗 Link this chat first with /start <code>", true)
		return service.Actor{}, false
	}
	return actorOf(user), true
}

func (c *Controller) answer(ctx context.Context, callbackID, text string, alert bool) {
	_, err := c.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		c.logger.Error("Failed to answer callback", zap.Error(err))
	}
}
