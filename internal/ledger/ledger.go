package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/reviosa/riverbank-bot/internal/interfaces"
	"github.com/reviosa/riverbank-bot/internal/models"
)

// RecentLimit is how many transaction log entries a history view shows.
const RecentLimit = 10

// Ledger implements the balance/transaction/contribution mutation
// rules on top of the row store. The store offers no transactions, so
// each mutation reads current state first and then writes balance,
// timestamp, log and contributions in that fixed order; an error
// between writes surfaces to the caller instead of being swallowed.
type Ledger struct {
	store    interfaces.RowStore
	currency string
	now      func() time.Time
}

func NewLedger(store interfaces.RowStore, currency string) *Ledger {
	return &Ledger{
		store:    store,
		currency: currency,
		now:      time.Now,
	}
}

// Contribution is one admin's net cumulative amount on an account.
type Contribution struct {
	Actor  string
	Amount int64
}

// Balance reads the current balance of a row.
func (l *Ledger) Balance(ctx context.Context, row int) (int64, error) {
	raw, err := l.store.Cell(ctx, row, models.ColBalance)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	balance, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: balance %q", models.ErrMalformedData, raw)
	}
	return balance, nil
}

// ApplyDelta adds a signed amount to the row's balance, prepends a log
// entry and folds the amount into the actor's contribution total. No
// floor is enforced: a deduction may drive the balance negative, which
// mirrors the overdraft-tolerant community ledger this tracks. Returns
// the new balance.
func (l *Ledger) ApplyDelta(ctx context.Context, row int, amount int64, actor string) (int64, error) {
	balance, err := l.Balance(ctx, row)
	if err != nil {
		return 0, err
	}
	prevLog, err := l.store.Cell(ctx, row, models.ColTransactions)
	if err != nil {
		return 0, err
	}
	rawContribs, err := l.store.Cell(ctx, row, models.ColContributions)
	if err != nil {
		return 0, err
	}
	contribs := models.ParseContributions(rawContribs)

	newBalance := balance + amount
	entry := l.formatEntry(amount, actor)
	newLog := entry
	if prevLog != "" {
		newLog = entry + "\n" + prevLog
	}

	contribs[actor] += amount
	if contribs[actor] <= 0 {
		delete(contribs, actor)
	}

	// Write order matters: balance first, contributions last, so a
	// crash mid-sequence leaves the balance authoritative.
	if err := l.store.SetCell(ctx, row, models.ColBalance, strconv.FormatInt(newBalance, 10)); err != nil {
		return 0, fmt.Errorf("write balance: %w", err)
	}
	if err := l.store.SetCell(ctx, row, models.ColLastUpdated, l.now().Format(models.TimestampLayout)); err != nil {
		return 0, fmt.Errorf("write timestamp: %w", err)
	}
	if err := l.store.SetCell(ctx, row, models.ColTransactions, newLog); err != nil {
		return 0, fmt.Errorf("write transaction log: %w", err)
	}
	if err := l.store.SetCell(ctx, row, models.ColContributions, models.EncodeContributions(contribs)); err != nil {
		return 0, fmt.Errorf("write contributions: %w", err)
	}
	return newBalance, nil
}

func (l *Ledger) formatEntry(amount int64, actor string) string {
	sign := "+"
	abs := amount
	if amount < 0 {
		sign = "-"
		abs = -amount
	}
	return fmt.Sprintf("%s %s %s%d %s", l.now().Format(models.TimestampLayout), sign, l.currency, abs, actor)
}

// Breakdown returns the account's contributions sorted by amount
// descending. Malformed stored data yields an empty breakdown.
func (l *Ledger) Breakdown(ctx context.Context, row int) ([]Contribution, error) {
	raw, err := l.store.Cell(ctx, row, models.ColContributions)
	if err != nil {
		return nil, err
	}
	contribs := models.ParseContributions(raw)

	out := make([]Contribution, 0, len(contribs))
	for actor, amount := range contribs {
		out = append(out, Contribution{Actor: actor, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Actor < out[j].Actor
	})
	return out, nil
}

// Clear resets the balance to zero and erases the transaction log and
// contributions. Identity columns are untouched. Irreversible.
func (l *Ledger) Clear(ctx context.Context, row int) error {
	if err := l.store.SetCell(ctx, row, models.ColBalance, "0"); err != nil {
		return fmt.Errorf("write balance: %w", err)
	}
	if err := l.store.SetCell(ctx, row, models.ColLastUpdated, l.now().Format(models.TimestampLayout)); err != nil {
		return fmt.Errorf("write timestamp: %w", err)
	}
	if err := l.store.SetCell(ctx, row, models.ColTransactions, ""); err != nil {
		return fmt.Errorf("write transaction log: %w", err)
	}
	if err := l.store.SetCell(ctx, row, models.ColContributions, ""); err != nil {
		return fmt.Errorf("write contributions: %w", err)
	}
	return nil
}

// Recent returns at most limit newest log entries plus the total
// entry count.
func (l *Ledger) Recent(ctx context.Context, row, limit int) ([]string, int, error) {
	raw, err := l.store.Cell(ctx, row, models.ColTransactions)
	if err != nil {
		return nil, 0, err
	}
	if raw == "" {
		return nil, 0, nil
	}
	entries := strings.Split(raw, "\n")
	total := len(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, total, nil
}
