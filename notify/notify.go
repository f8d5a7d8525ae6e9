// Package notify delivers operator-facing messages about activity on the
// platform, such as new registrations.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"eventease/model"
)

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// sender is the part of *tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot    sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	b.Debug = false
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// Log writes notifications to the structured log. It is used when no chat is
// configured.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(ctx context.Context, text string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification", "text", text)
	return nil
}

func RegistrationMessage(event model.Event, reg model.Registration) string {
	return fmt.Sprintf("New registration for %q\n%s <%s>, %d ticket(s), %.2f via %s\n%d/%d seats taken",
		event.Title,
		reg.Attendee.Name, reg.Attendee.Email,
		reg.NumberOfTickets, reg.TotalPrice, reg.PaymentMethod,
		event.Attendees+reg.NumberOfTickets, event.Capacity)
}
