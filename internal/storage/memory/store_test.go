package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviosa/riverbank-bot/internal/models"
)

func TestAppendPadsToColumnCount(t *testing.T) {
	s := NewMemoryRowStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, []string{"42", "Ava"}))

	row, err := s.Row(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, row, models.ColumnCount)
}

func TestCellAccess(t *testing.T) {
	s := NewMemoryRowStore()
	ctx := context.Background()
	s.Seed([][]string{{"42", "Ava", "@ava"}})

	got, err := s.Cell(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Ava", got)

	// Reading past the stored cells is a blank, not an error.
	got, err = s.Cell(ctx, 1, models.ColContributions)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Writing past the stored cells grows the row.
	require.NoError(t, s.SetCell(ctx, 1, models.ColBalance, "500"))
	got, err = s.Cell(ctx, 1, models.ColBalance)
	require.NoError(t, err)
	assert.Equal(t, "500", got)

	_, err = s.Cell(ctx, 5, 1)
	assert.Error(t, err)
	assert.Error(t, s.SetCell(ctx, 5, 1, "x"))
}
