package telegram

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/go-telegram/bot/models"
)

const (
	msgInternalError = "❌ Something went wrong. Please try again later."
	msgNotLinked     = "🔗 This chat is not linked to an account yet.\n\n" +
		"Open your dashboard, press <b>Connect Telegram</b> and send the code here with /start."
	msgHelp = "📚 <b>Commands</b>\n\n" +
		"/start &lt;code&gt; - link this chat to your account\n" +
		"/mybookings - upcoming lessons with quick actions\n" +
		"/notifications - unread notifications\n" +
		"/help - this message"

	dateTimeLayout = "Mon 02 Jan 2006 15:04"
)

type statusDisplay struct {
	Emoji string
	Text  string
}

var statusDisplays = map[model.BookingStatus]statusDisplay{
	model.BookingStatusPending:     {"⏳", "Awaiting confirmation"},
	model.BookingStatusConfirmed:   {"✅", "Confirmed"},
	model.BookingStatusCompleted:   {"✔️", "Completed"},
	model.BookingStatusCancelled:   {"❌", "Cancelled"},
	model.BookingStatusRescheduled: {"🔁", "Rescheduled, awaiting confirmation"},
	model.BookingStatusNoShow:      {"🚫", "No-show"},
}

func bookingStatusDisplay(status model.BookingStatus) statusDisplay {
	if d, ok := statusDisplays[status]; ok {
		return d
	}
	return statusDisplay{"❓", "Unknown"}
}

var formatNames = map[model.LessonFormat]string{
	model.LessonFormatOnline:   "Online",
	model.LessonFormatInPerson: "In person",
	model.LessonFormatHybrid:   "Hybrid",
}

// formatPrice renders pence as pounds
func formatPrice(pence int) string {
	if pence%100 == 0 {
		return fmt.Sprintf("£%d", pence/100)
	}
	return fmt.Sprintf("£%d.%02d", pence/100, pence%100)
}

func formatBooking(b *model.Booking) string {
	d := bookingStatusDisplay(b.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 <b>%s</b>\n", html.EscapeString(b.Subject))
	if b.Child != nil {
		fmt.Fprintf(&sb, "👦 %s\n", html.EscapeString(b.Child.FirstName))
	}
	if b.Tutor != nil {
		fmt.Fprintf(&sb, "🎓 %s\n", html.EscapeString(b.Tutor.FullName()))
	}
	fmt.Fprintf(&sb, "🗓 %s (%d min)\n", b.ScheduledAt.UTC().Format(dateTimeLayout), b.DurationMinutes)
	if name, ok := formatNames[b.Format]; ok {
		fmt.Fprintf(&sb, "📍 %s\n", name)
	}
	if b.Fee > 0 {
		fmt.Fprintf(&sb, "💷 %s\n", formatPrice(b.Fee))
	}
	fmt.Fprintf(&sb, "%s %s", d.Emoji, d.Text)

	return sb.String()
}

func formatNotification(n *model.Notification) string {
	return fmt.Sprintf("🔔 <b>%s</b>\n%s", html.EscapeString(n.Title), html.EscapeString(n.Message))
}

// bookingKeyboard offers the actions the actor may take on b next.
// It returns nil when there is nothing to do.
func bookingKeyboard(actor service.Actor, b *model.Booking) *models.InlineKeyboardMarkup {
	if b.Status.IsTerminal() {
		return nil
	}

	id := b.ID.String()
	var row []models.InlineKeyboardButton

	if b.Status.CanTransitionTo(model.BookingStatusConfirmed) && !confirmedBy(actor, b) {
		row = append(row, button("✅ Confirm", cbConfirm+id))
	}
	if actor.IsTeacher() && b.Status == model.BookingStatusConfirmed {
		row = append(row, button("✔️ Complete", cbComplete+id))
	}
	row = append(row, button("❌ Cancel", cbCancel+id))

	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{row}}
}

func confirmedBy(actor service.Actor, b *model.Booking) bool {
	switch {
	case actor.IsParent():
		return b.ParentConfirmed
	case actor.IsTeacher():
		return b.TutorConfirmed
	}
	return b.ParentConfirmed && b.TutorConfirmed
}

func button(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

// errorMessage is the alert shown for a failed action
func errorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrBookingNotFound):
		return "❌ Booking not found"
	case errors.Is(err, service.ErrNotParty), errors.Is(err, service.ErrForbiddenAction):
		return "❌ You can't do that with this booking"
	case errors.Is(err, service.ErrInvalidTransition):
		return "❌ The booking has already moved on"
	case errors.Is(err, service.ErrValidation):
		return "❌ Invalid request"
	default:
		return "❌ Something went wrong"
	}
}
