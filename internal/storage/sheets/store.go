package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/reviosa/riverbank-bot/internal/interfaces"
)

// SheetsRowStore implements interfaces.RowStore against a single
// worksheet of a Google spreadsheet. All values are read and written
// raw (unformatted strings), matching the ledger's stringly cell model.
type SheetsRowStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsRowStore builds a store from service-account credentials
// JSON. It performs one read so a missing or unshared spreadsheet
// fails at startup instead of on the first command.
func NewSheetsRowStore(ctx context.Context, credentialsJSON []byte, spreadsheetID, sheetName string) (*SheetsRowStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	s := &SheetsRowStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}
	if _, err := s.Rows(ctx); err != nil {
		return nil, fmt.Errorf("spreadsheet %q not reachable: %w", spreadsheetID, err)
	}
	return s, nil
}

func (s *SheetsRowStore) cellRange(row, col int) string {
	// Column layout never exceeds 8 columns, so a single letter is enough.
	return fmt.Sprintf("%s!%c%d", s.sheetName, rune('A'+col-1), row)
}

func toStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func (s *SheetsRowStore) Rows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = toStrings(r)
	}
	return rows, nil
}

func (s *SheetsRowStore) Row(ctx context.Context, row int) ([]string, error) {
	rng := fmt.Sprintf("%s!A%d:H%d", s.sheetName, row, row)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("row %d out of range", row)
	}
	return toStrings(resp.Values[0]), nil
}

func (s *SheetsRowStore) Cell(ctx context.Context, row, col int) (string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.cellRange(row, col)).
		Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return fmt.Sprint(resp.Values[0][0]), nil
}

func (s *SheetsRowStore) SetCell(ctx context.Context, row, col int, value string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.cellRange(row, col), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (s *SheetsRowStore) Append(ctx context.Context, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{values}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetName, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

var _ interfaces.RowStore = (*SheetsRowStore)(nil)
