package transfer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviosa/riverbank-bot/internal/interfaces"
	"github.com/reviosa/riverbank-bot/internal/ledger"
	"github.com/reviosa/riverbank-bot/internal/models"
	"github.com/reviosa/riverbank-bot/internal/storage/memory"
)

type fixture struct {
	manager *Manager
	ledger  *ledger.Ledger
	store   *memory.MemoryRowStore
	avaRow  int
	bobRow  int
}

const (
	avaID = int64(42)
	bobID = int64(77)
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewMemoryRowStore()

	ava := models.NewAccount(avaID, "Ava", "@ava", "", time.Now())
	bob := models.NewAccount(bobID, "Bob", "@bob", "", time.Now())
	require.NoError(t, store.Append(ctx, ava.ToRow()))
	require.NoError(t, store.Append(ctx, bob.ToRow()))

	l := ledger.NewLedger(store, "₱")
	m := NewManager(store, l, DefaultTTL)
	return &fixture{manager: m, ledger: l, store: store, avaRow: 1, bobRow: 2}
}

func (f *fixture) fund(t *testing.T, row int, amount int64) {
	t.Helper()
	_, err := f.ledger.ApplyDelta(context.Background(), row, amount, "root")
	require.NoError(t, err)
}

func (f *fixture) propose(t *testing.T, amount int64) models.PendingTransfer {
	t.Helper()
	pt, _, err := f.manager.Propose(context.Background(), avaID, f.avaRow, bobID, f.bobRow, "Bob", amount)
	require.NoError(t, err)
	return pt
}

func TestProposeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, f.avaRow, 500)

	_, _, err := f.manager.Propose(ctx, avaID, f.avaRow, bobID, f.bobRow, "Bob", 0)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, _, err = f.manager.Propose(ctx, avaID, f.avaRow, bobID, f.bobRow, "Bob", -10)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, _, err = f.manager.Propose(ctx, avaID, f.avaRow, avaID, f.avaRow, "Ava", 100)
	assert.ErrorIs(t, err, models.ErrSelfTransfer)

	_, balance, err := f.manager.Propose(ctx, avaID, f.avaRow, bobID, f.bobRow, "Bob", 600)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	assert.Equal(t, int64(500), balance)
}

func TestConfirmMovesExactAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, f.avaRow, 500)
	pt := f.propose(t, 200)

	res, err := f.manager.Confirm(ctx, pt.ID, avaID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), res.Amount)
	assert.Equal(t, int64(300), res.NewSenderBalance)
	assert.Equal(t, "Bob", res.TargetName)

	avaBalance, err := f.ledger.Balance(ctx, f.avaRow)
	require.NoError(t, err)
	assert.Equal(t, int64(300), avaBalance)

	bobBalance, err := f.ledger.Balance(ctx, f.bobRow)
	require.NoError(t, err)
	assert.Equal(t, int64(200), bobBalance)

	// Each side gains exactly one new log entry (Ava had one from
	// funding).
	_, avaTotal, err := f.ledger.Recent(ctx, f.avaRow, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, avaTotal)
	entries, bobTotal, err := f.ledger.Recent(ctx, f.bobRow, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, bobTotal)
	// Credit leg is labeled with the sender's display name.
	assert.Contains(t, entries[0], "+ ₱200 Ava")

	// The id is consumed; a duplicate confirm reports expiry.
	_, err = f.manager.Confirm(ctx, pt.ID, avaID)
	assert.ErrorIs(t, err, models.ErrTransferExpired)
}

func TestConfirmByStrangerLeavesPendingIntact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, f.avaRow, 500)
	pt := f.propose(t, 200)

	_, err := f.manager.Confirm(ctx, pt.ID, bobID)
	assert.ErrorIs(t, err, models.ErrTransferNotOwner)
	assert.Equal(t, 1, f.manager.PendingCount())

	// The rightful sender can still confirm afterwards.
	_, err = f.manager.Confirm(ctx, pt.ID, avaID)
	require.NoError(t, err)
}

func TestConfirmReValidatesBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, f.avaRow, 500)
	pt := f.propose(t, 400)

	// An intervening deduction races the confirmation.
	_, err := f.ledger.ApplyDelta(ctx, f.avaRow, -300, "root")
	require.NoError(t, err)

	_, err = f.manager.Confirm(ctx, pt.ID, avaID)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	// The failed confirm consumed the proposal.
	_, err = f.manager.Confirm(ctx, pt.ID, avaID)
	assert.ErrorIs(t, err, models.ErrTransferExpired)

	bobBalance, err := f.ledger.Balance(ctx, f.bobRow)
	require.NoError(t, err)
	assert.Zero(t, bobBalance)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.avaRow, 500)
	pt := f.propose(t, 200)

	assert.ErrorIs(t, f.manager.Cancel(pt.ID, bobID), models.ErrTransferNotOwner)
	assert.Equal(t, 1, f.manager.PendingCount())

	require.NoError(t, f.manager.Cancel(pt.ID, avaID))
	assert.Zero(t, f.manager.PendingCount())

	// Cancelling an absent id is a no-op.
	require.NoError(t, f.manager.Cancel(pt.ID, avaID))

	_, err := f.manager.Confirm(context.Background(), pt.ID, avaID)
	assert.ErrorIs(t, err, models.ErrTransferExpired)
}

func TestProposalExpiresAfterTTL(t *testing.T) {
	f := newFixture(t)
	f.fund(t, f.avaRow, 500)

	now := time.Now()
	f.manager.now = func() time.Time { return now }
	pt := f.propose(t, 200)

	f.manager.now = func() time.Time { return now.Add(DefaultTTL + time.Second) }
	_, err := f.manager.Confirm(context.Background(), pt.ID, avaID)
	assert.ErrorIs(t, err, models.ErrTransferExpired)
	assert.Zero(t, f.manager.PendingCount())
}

// flakyStore lets a fixed number of writes through, then fails, to
// model a store outage between the debit and credit legs.
type flakyStore struct {
	interfaces.RowStore
	writesLeft int
}

func (f *flakyStore) SetCell(ctx context.Context, row, col int, value string) error {
	if f.writesLeft <= 0 {
		return errors.New("store gone")
	}
	f.writesLeft--
	return f.RowStore.SetCell(ctx, row, col, value)
}

func TestConfirmSurfacesMidSequenceFailure(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewMemoryRowStore()

	ava := models.NewAccount(avaID, "Ava", "@ava", "", time.Now())
	bob := models.NewAccount(bobID, "Bob", "@bob", "", time.Now())
	require.NoError(t, inner.Append(ctx, ava.ToRow()))
	require.NoError(t, inner.Append(ctx, bob.ToRow()))

	// The debit leg writes four cells; allow those plus the funding
	// writes, then fail so the credit leg cannot start.
	flaky := &flakyStore{RowStore: inner, writesLeft: 8}
	l := ledger.NewLedger(flaky, "₱")
	m := NewManager(flaky, l, DefaultTTL)

	_, err := l.ApplyDelta(ctx, 1, 500, "root")
	require.NoError(t, err)

	pt, _, err := m.Propose(ctx, avaID, 1, bobID, 2, "Bob", 200)
	require.NoError(t, err)

	_, err = m.Confirm(ctx, pt.ID, avaID)
	require.Error(t, err)

	// Partial state is observable: the sender was debited, the target
	// never credited. The proposal is gone so a retry cannot double
	// apply the debit.
	avaBalance, err := l.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(300), avaBalance)

	bobBalance, err := l.Balance(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, bobBalance)

	_, err = m.Confirm(ctx, pt.ID, avaID)
	assert.ErrorIs(t, err, models.ErrTransferExpired)
}
