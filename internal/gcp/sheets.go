package gcp

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/Lllllllleong/eventreportflow/internal/models"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrEventNotFound is returned when no row carries the requested Event ID.
var ErrEventNotFound = errors.New("event not found")

const (
	sheetAttempts = 3
	sheetDelay    = 2 * time.Second
)

// EventSheet is the spreadsheet-backed record store for submitted events.
// Rows are addressed by the "Event ID" column; other columns by header name.
type EventSheet struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewEventSheet creates a Sheets client bound to one worksheet.
func NewEventSheet(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*EventSheet, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID must be provided")
	}
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &EventSheet{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// GetEvent loads the event row with the given ID.
func (s *EventSheet) GetEvent(ctx context.Context, eventID string) (*models.EventRecord, error) {
	values, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	row, _, ok := findEventRow(values, eventID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return models.EventRecordFromRow(row), nil
}

// UpdateFields writes the given column values into the event's row. Columns
// missing from the header row are appended to it first.
func (s *EventSheet) UpdateFields(ctx context.Context, eventID string, fields map[string]string) error {
	return Retry(ctx, "sheet update", sheetAttempts, sheetDelay, func(ctx context.Context) error {
		values, err := s.readAll(ctx)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return fmt.Errorf("sheet %s has no header row", s.sheetName)
		}
		_, rowNumber, ok := findEventRow(values, eventID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}

		headers := values[0]
		var data []*sheets.ValueRange
		for _, column := range slices.Sorted(maps.Keys(fields)) {
			value := fields[column]
			idx := indexOf(headers, column)
			if idx < 0 {
				idx = len(headers)
				headers = append(headers, column)
				data = append(data, s.cell(1, idx, column))
			}
			data = append(data, s.cell(rowNumber, idx, value))
		}

		req := &sheets.BatchUpdateValuesRequest{ValueInputOption: "RAW", Data: data}
		_, err = s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return err
	})
}

func (s *EventSheet) readAll(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", s.sheetName, err)
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out, nil
}

func (s *EventSheet) cell(row, colIdx int, value string) *sheets.ValueRange {
	return &sheets.ValueRange{
		Range:  fmt.Sprintf("%s!%s%d", s.sheetName, columnLetter(colIdx), row),
		Values: [][]interface{}{{value}},
	}
}

// findEventRow returns the header->value mapping of the row whose Event ID
// matches, plus its 1-based sheet row number.
func findEventRow(values [][]string, eventID string) (map[string]string, int, bool) {
	if len(values) < 2 {
		return nil, 0, false
	}
	headers := values[0]
	idCol := indexOf(headers, models.ColEventID)
	if idCol < 0 {
		idCol = 0
	}
	for i, row := range values[1:] {
		if len(row) > idCol && row[idCol] == eventID {
			return rowToMap(headers, row), i + 2, true
		}
	}
	return nil, 0, false
}

func rowToMap(headers, row []string) map[string]string {
	m := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(row) {
			m[h] = row[i]
		} else {
			m[h] = ""
		}
	}
	return m
}

// columnLetter converts a 0-based column index to A1 notation (0 -> A, 26 -> AA).
func columnLetter(idx int) string {
	var out []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		out = append([]byte{byte('A' + (n-1)%26)}, out...)
	}
	return string(out)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
