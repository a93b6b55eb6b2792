package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/reviosa/riverbank-bot/internal/interfaces"
	"github.com/reviosa/riverbank-bot/internal/models"
)

// MemoryRowStore is an in-memory implementation of interfaces.RowStore.
// It backs tests and local development; a mutex keeps it safe for
// concurrent access even though the bot dispatches serially.
type MemoryRowStore struct {
	mu   sync.Mutex
	rows [][]string
}

func NewMemoryRowStore() *MemoryRowStore {
	return &MemoryRowStore{}
}

// Seed replaces the store contents. Test helper.
func (m *MemoryRowStore) Seed(rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make([][]string, len(rows))
	for i, r := range rows {
		m.rows[i] = append([]string(nil), r...)
	}
}

func (m *MemoryRowStore) Rows(ctx context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (m *MemoryRowStore) Row(ctx context.Context, row int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 1 || row > len(m.rows) {
		return nil, fmt.Errorf("row %d out of range", row)
	}
	return append([]string(nil), m.rows[row-1]...), nil
}

func (m *MemoryRowStore) Cell(ctx context.Context, row, col int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 1 || row > len(m.rows) {
		return "", fmt.Errorf("row %d out of range", row)
	}
	cells := m.rows[row-1]
	if col < 1 || col > len(cells) {
		return "", nil
	}
	return cells[col-1], nil
}

func (m *MemoryRowStore) SetCell(ctx context.Context, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 1 || row > len(m.rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	cells := m.rows[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	m.rows[row-1] = cells
	return nil
}

func (m *MemoryRowStore) Append(ctx context.Context, cells []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := append([]string(nil), cells...)
	for len(row) < models.ColumnCount {
		row = append(row, "")
	}
	m.rows = append(m.rows, row)
	return nil
}

var _ interfaces.RowStore = (*MemoryRowStore)(nil)
