// Package export copies event attendee lists to external spreadsheets.
package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"eventease/model"
)

const SheetRegistrations = "Registrations"

type Exporter interface {
	ExportRegistrations(ctx context.Context, event model.Event, regs []model.Registration) (int, error)
}

// appendFunc appends rows below the last filled row of sheetRange.
type appendFunc func(ctx context.Context, sheetRange string, rows [][]interface{}) error

type Sheets struct {
	spreadsheetID string
	appendRows    appendFunc
}

func NewSheets(ctx context.Context, serviceAccountJSONPath, spreadsheetID string) (*Sheets, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}

	s := &Sheets{spreadsheetID: spreadsheetID}
	s.appendRows = func(ctx context.Context, sheetRange string, rows [][]interface{}) error {
		vr := &sheetsv4.ValueRange{Values: rows}
		_, err := srv.Spreadsheets.Values.Append(spreadsheetID, sheetRange, vr).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	}
	return s, nil
}

func (s *Sheets) SpreadsheetID() string { return s.spreadsheetID }

// ExportRegistrations appends one row per registration, preceded by a row
// naming the event, and returns the number of registration rows written.
func (s *Sheets) ExportRegistrations(ctx context.Context, event model.Event, regs []model.Registration) (int, error) {
	rows := Rows(event, regs, time.Now().UTC())
	if err := s.appendRows(ctx, SheetRegistrations+"!A:J", rows); err != nil {
		return 0, fmt.Errorf("append rows: %w", err)
	}
	return len(regs), nil
}

func Rows(event model.Event, regs []model.Registration, exportedAt time.Time) [][]interface{} {
	rows := make([][]interface{}, 0, len(regs)+1)
	rows = append(rows, []interface{}{
		"event", event.Id, event.Title, event.Date, event.Location,
		fmt.Sprintf("%d/%d", event.Attendees, event.Capacity),
		"exported", exportedAt.Format(time.RFC3339), "", "",
	})
	for _, r := range regs {
		rows = append(rows, []interface{}{
			r.Id,
			r.Attendee.Name,
			r.Attendee.Email,
			r.Attendee.Phone,
			r.NumberOfTickets,
			r.TicketType,
			r.TotalPrice,
			r.PaymentMethod,
			r.Status,
			r.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}
