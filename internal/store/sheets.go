package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/codr1/roombook/internal/booking"
)

// Header row expected on the worksheet; data rows follow it.
var sheetColumns = []string{"name", "room", "date", "start", "end"}

type SheetConfig struct {
	SpreadsheetID   string
	Worksheet       string
	CredentialsJSON []byte
	CredentialsFile string
}

// SheetStore reads and appends reservations on one Google Sheets worksheet.
type SheetStore struct {
	svc           *sheets.Service
	spreadsheetID string

	mu        sync.Mutex
	worksheet string
}

// NewSheetStore authenticates with a service account and binds to the sheet.
func NewSheetStore(ctx context.Context, cfg SheetConfig) (*SheetStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	data := cfg.CredentialsJSON
	if len(data) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, fmt.Errorf("sheet credentials are required")
		}
		var err error
		data, err = os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read sheet credentials: %w", err)
		}
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheet credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return NewSheetStoreWithService(svc, cfg.SpreadsheetID, cfg.Worksheet), nil
}

// NewSheetStoreWithService uses an existing client. An empty worksheet name
// selects the first worksheet on first use.
func NewSheetStoreWithService(svc *sheets.Service, spreadsheetID, worksheet string) *SheetStore {
	return &SheetStore{svc: svc, spreadsheetID: spreadsheetID, worksheet: worksheet}
}

func (s *SheetStore) LoadAll(ctx context.Context) ([]booking.Reservation, error) {
	title, err := s.sheetTitle(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(title)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", title, err)
	}
	if len(resp.Values) == 0 {
		return []booking.Reservation{}, nil
	}

	columns, err := headerColumns(resp.Values[0])
	if err != nil {
		return nil, fmt.Errorf("worksheet %q: %w", title, err)
	}

	records := make([]booking.Reservation, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		if blankRow(row) {
			continue
		}
		records = append(records, booking.Reservation{
			Name:  cellAt(row, columns["name"]),
			Room:  booking.CanonicalRoom(cellAt(row, columns["room"])),
			Date:  cellAt(row, columns["date"]),
			Start: cellAt(row, columns["start"]),
			End:   cellAt(row, columns["end"]),
		})
	}
	return records, nil
}

// Append writes one row in column order. Values are sent RAW so the sheet's
// locale cannot reformat dates.
func (s *SheetStore) Append(ctx context.Context, r booking.Reservation) error {
	title, err := s.sheetTitle(ctx)
	if err != nil {
		return err
	}

	existing, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(title)+"!A1:E1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read worksheet header: %w", err)
	}

	var values [][]interface{}
	if len(existing.Values) == 0 {
		header := make([]interface{}, len(sheetColumns))
		for i, name := range sheetColumns {
			header[i] = name
		}
		values = append(values, header)
	}
	row := make([]interface{}, 0, len(sheetColumns))
	for _, field := range r.Fields() {
		row = append(row, field)
	}
	values = append(values, row)

	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, quoteSheet(title)+"!A:E", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to worksheet %q: %w", title, err)
	}
	return nil
}

func (s *SheetStore) sheetTitle(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.worksheet != "" {
		return s.worksheet, nil
	}

	spreadsheet, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("open spreadsheet: %w", err)
	}
	if len(spreadsheet.Sheets) == 0 || spreadsheet.Sheets[0].Properties == nil {
		return "", fmt.Errorf("spreadsheet %s has no worksheets", s.spreadsheetID)
	}
	s.worksheet = spreadsheet.Sheets[0].Properties.Title
	return s.worksheet, nil
}

func headerColumns(header []interface{}) (map[string]int, error) {
	columns := make(map[string]int, len(sheetColumns))
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(fmt.Sprint(cell)))
		if _, seen := columns[key]; !seen {
			columns[key] = i
		}
	}
	for _, name := range sheetColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("header is missing column %q", name)
		}
	}
	return columns, nil
}

func cellAt(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

func blankRow(row []interface{}) bool {
	for i := range row {
		if cellAt(row, i) != "" {
			return false
		}
	}
	return true
}

// quoteSheet escapes a worksheet title for A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
