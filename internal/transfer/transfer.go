package transfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reviosa/riverbank-bot/internal/interfaces"
	"github.com/reviosa/riverbank-bot/internal/ledger"
	"github.com/reviosa/riverbank-bot/internal/models"
)

// DefaultTTL bounds how long a proposal waits for confirmation before
// it is treated as expired.
const DefaultTTL = 5 * time.Minute

// Manager owns the process-local map of pending transfer proposals and
// drives the propose -> confirm/cancel state machine. Proposals are
// not persisted; a restart drops them and a later confirm reports the
// transfer as expired. Stale entries are swept on every access.
type Manager struct {
	store  interfaces.RowStore
	ledger *ledger.Ledger

	mu      sync.Mutex
	pending map[string]models.PendingTransfer
	ttl     time.Duration
	now     func() time.Time
}

func NewManager(store interfaces.RowStore, l *ledger.Ledger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:   store,
		ledger:  l,
		pending: make(map[string]models.PendingTransfer),
		ttl:     ttl,
		now:     time.Now,
	}
}

// ConfirmResult reports a completed transfer back to the chat layer.
type ConfirmResult struct {
	Amount           int64
	TargetName       string
	NewSenderBalance int64
}

// Propose validates a transfer request and records it as pending. The
// sender's balance is checked now and again at confirm time, since it
// can change in between. Returns the proposal and the sender's current
// balance for the confirmation prompt.
func (m *Manager) Propose(ctx context.Context, senderID int64, senderRow int, targetID int64, targetRow int, targetName string, amount int64) (models.PendingTransfer, int64, error) {
	if amount <= 0 {
		return models.PendingTransfer{}, 0, models.ErrInvalidAmount
	}
	if senderID == targetID || senderRow == targetRow {
		return models.PendingTransfer{}, 0, models.ErrSelfTransfer
	}

	balance, err := m.ledger.Balance(ctx, senderRow)
	if err != nil {
		return models.PendingTransfer{}, 0, err
	}
	if balance < amount {
		return models.PendingTransfer{}, balance, models.ErrInsufficientFunds
	}

	now := m.now()
	pt := models.PendingTransfer{
		ID:         models.TransferID(senderID, targetID, amount, now),
		SenderID:   senderID,
		SenderRow:  senderRow,
		TargetRow:  targetRow,
		TargetName: targetName,
		Amount:     amount,
		CreatedAt:  now,
	}

	m.mu.Lock()
	m.sweepLocked()
	m.pending[pt.ID] = pt
	m.mu.Unlock()

	return pt, balance, nil
}

// Confirm executes a pending transfer. The confirming identity must be
// the proposing sender. The sender balance is re-read; if it no longer
// covers the amount the proposal is discarded and the confirm fails,
// so a retry on the same id reports expiry.
func (m *Manager) Confirm(ctx context.Context, transferID string, callerID int64) (ConfirmResult, error) {
	m.mu.Lock()
	m.sweepLocked()
	pt, ok := m.pending[transferID]
	m.mu.Unlock()

	if !ok {
		return ConfirmResult{}, models.ErrTransferExpired
	}
	if pt.SenderID != callerID {
		return ConfirmResult{}, models.ErrTransferNotOwner
	}

	balance, err := m.ledger.Balance(ctx, pt.SenderRow)
	if err != nil {
		return ConfirmResult{}, err
	}
	if balance < pt.Amount {
		m.discard(transferID)
		return ConfirmResult{}, models.ErrInsufficientFunds
	}

	// Debit the sender, labeled with the counterparty's name, then
	// credit the target labeled with the sender's name read fresh from
	// the store. A failure between the two legs surfaces as an error
	// with the debit already applied; the store has no transactions.
	newSenderBalance, err := m.ledger.ApplyDelta(ctx, pt.SenderRow, -pt.Amount, pt.TargetName)
	if err != nil {
		m.discard(transferID)
		return ConfirmResult{}, fmt.Errorf("debit sender: %w", err)
	}

	senderName, err := m.store.Cell(ctx, pt.SenderRow, models.ColDisplayName)
	if err != nil || senderName == "" {
		senderName = fmt.Sprintf("%d", pt.SenderID)
	}

	if _, err := m.ledger.ApplyDelta(ctx, pt.TargetRow, pt.Amount, senderName); err != nil {
		m.discard(transferID)
		return ConfirmResult{}, fmt.Errorf("credit target: %w", err)
	}

	m.discard(transferID)
	return ConfirmResult{
		Amount:           pt.Amount,
		TargetName:       pt.TargetName,
		NewSenderBalance: newSenderBalance,
	}, nil
}

// Cancel discards a pending transfer. Only the proposing sender may
// cancel; cancelling an id that is already gone is a no-op.
func (m *Manager) Cancel(transferID string, callerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()

	pt, ok := m.pending[transferID]
	if !ok {
		return nil
	}
	if pt.SenderID != callerID {
		return models.ErrTransferNotOwner
	}
	delete(m.pending, transferID)
	return nil
}

// PendingCount reports how many proposals are outstanding after a
// sweep. Used by tests and the health endpoint.
func (m *Manager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	return len(m.pending)
}

func (m *Manager) discard(transferID string) {
	m.mu.Lock()
	delete(m.pending, transferID)
	m.mu.Unlock()
}

func (m *Manager) sweepLocked() {
	now := m.now()
	for id, pt := range m.pending {
		if now.Sub(pt.CreatedAt) > m.ttl {
			delete(m.pending, id)
		}
	}
}
