package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviosa/riverbank-bot/internal/models"
	"github.com/reviosa/riverbank-bot/internal/storage/memory"
)

func newTestDirectory(t *testing.T) (*Directory, *memory.MemoryRowStore) {
	t.Helper()
	store := memory.NewMemoryRowStore()
	return NewDirectory(store), store
}

func TestFindByMemberIDSkipsJunkCells(t *testing.T) {
	dir, store := newTestDirectory(t)
	store.Seed([][]string{
		{"Member ID", "Name", "Username"}, // header row
		{"", "blank id", ""},
		{"not-a-number", "junk", "@junk"},
		{"42", "Ava", "@ava"},
	})

	row, err := dir.FindByMemberID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 4, row)

	_, err = dir.FindByMemberID(context.Background(), 99)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestFindByHandle(t *testing.T) {
	dir, store := newTestDirectory(t)
	store.Seed([][]string{
		{"42", "Ava", "@Ava"},
		{"77", "Bob", "bob"},
	})
	ctx := context.Background()

	// Case-insensitive, leading @ optional on both sides.
	for _, q := range []string{"@ava", "ava", "@AVA"} {
		row, err := dir.FindByHandle(ctx, q)
		require.NoError(t, err, q)
		assert.Equal(t, 1, row, q)
	}

	row, err := dir.FindByHandle(ctx, "@bob")
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	_, err = dir.FindByHandle(ctx, "@nobody")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
	_, err = dir.FindByHandle(ctx, "@")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestCreateRejectsDuplicates(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	acct := models.NewAccount(42, "Ava", "@ava", "", time.Now())
	require.NoError(t, dir.Create(ctx, acct))

	err := dir.Create(ctx, acct)
	assert.ErrorIs(t, err, models.ErrAccountExists)

	row, err := dir.FindByMemberID(ctx, 42)
	require.NoError(t, err)

	got, err := dir.Get(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.MemberID)
	assert.Zero(t, got.Balance)
	assert.Empty(t, got.Transactions)
	assert.Empty(t, got.Contributions)
}
