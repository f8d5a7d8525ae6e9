package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventease/model"
)

func TestRows(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	event := model.Event{Id: "e1", Title: "Go Meetup", Date: "2024-03-15", Location: "Pune", Capacity: 40, Attendees: 3}
	regs := []model.Registration{
		{
			Id:              "r1",
			Attendee:        model.Attendee{Name: "Asha", Email: "asha@example.com", Phone: "9876543210"},
			NumberOfTickets: 3,
			TicketType:      "general",
			TotalPrice:      450,
			PaymentMethod:   "card",
			Status:          model.RegistrationConfirmed,
			CreatedAt:       at,
		},
	}

	rows := Rows(event, regs, at)
	require.Len(t, rows, 2)
	assert.Equal(t, "Go Meetup", rows[0][2])
	assert.Equal(t, "3/40", rows[0][5])
	assert.Equal(t, []interface{}{
		"r1", "Asha", "asha@example.com", "9876543210", 3, "general", 450.0, "card", "confirmed", "2024-03-01T10:00:00Z",
	}, rows[1])
}

func TestExportRegistrations(t *testing.T) {
	var gotRange string
	var gotRows [][]interface{}
	s := &Sheets{
		spreadsheetID: "sheet",
		appendRows: func(_ context.Context, sheetRange string, rows [][]interface{}) error {
			gotRange, gotRows = sheetRange, rows
			return nil
		},
	}

	n, err := s.ExportRegistrations(context.Background(), model.Event{Id: "e1"}, []model.Registration{{Id: "r1"}, {Id: "r2"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Registrations!A:J", gotRange)
	assert.Len(t, gotRows, 3)

	s.appendRows = func(context.Context, string, [][]interface{}) error { return errors.New("quota") }
	_, err = s.ExportRegistrations(context.Background(), model.Event{Id: "e1"}, nil)
	assert.ErrorContains(t, err, "quota")
}
