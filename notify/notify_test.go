package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventease/model"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func TestTelegramNotify(t *testing.T) {
	bot := &fakeBot{}
	n := &Telegram{bot: bot, chatID: 42}

	require.NoError(t, n.Notify(context.Background(), "hello"))
	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "hello", msg.Text)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, n.Notify(ctx, "late"))
	assert.Len(t, bot.sent, 1)
}

func TestLogNotify(t *testing.T) {
	var buf bytes.Buffer
	n := Log{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, n.Notify(context.Background(), "seat booked"))
	assert.Contains(t, buf.String(), `"text":"seat booked"`)
}

func TestRegistrationMessage(t *testing.T) {
	event := model.Event{Title: "Go Meetup", Capacity: 50, Attendees: 10}
	reg := model.Registration{
		Attendee:        model.Attendee{Name: "Asha", Email: "asha@example.com"},
		NumberOfTickets: 2,
		TotalPrice:      300,
		PaymentMethod:   "upi",
	}

	msg := RegistrationMessage(event, reg)
	assert.Contains(t, msg, `"Go Meetup"`)
	assert.Contains(t, msg, "Asha <asha@example.com>, 2 ticket(s), 300.00 via upi")
	assert.Contains(t, msg, "12/50 seats taken")
}
