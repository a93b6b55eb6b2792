package interfaces

import "context"

// RowStore is the narrow contract against the remote row-oriented
// tabular store holding account rows. Rows and columns are 1-based,
// matching spreadsheet coordinates. Implementations are not required
// to provide any transactional isolation; callers sequence their own
// writes.
type RowStore interface {
	// Rows returns every data row in row order. A row's cells may be
	// shorter than the full column layout when trailing cells are empty.
	Rows(ctx context.Context) ([][]string, error)
	// Row returns the cells of a single row.
	Row(ctx context.Context, row int) ([]string, error)
	// Cell returns one cell value, empty string if the cell is blank.
	Cell(ctx context.Context, row, col int) (string, error)
	// SetCell overwrites one cell value.
	SetCell(ctx context.Context, row, col int, value string) error
	// Append adds a new row after the last data row.
	Append(ctx context.Context, cells []string) error
}
