package directory

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/reviosa/riverbank-bot/internal/interfaces"
	"github.com/reviosa/riverbank-bot/internal/models"
)

// Directory resolves member identities to ledger rows.
type Directory struct {
	store interfaces.RowStore
}

func NewDirectory(store interfaces.RowStore) *Directory {
	return &Directory{store: store}
}

// FindByMemberID scans the identity column for the given member id and
// returns its 1-based row. Blank or non-numeric cells in the column are
// skipped, not errors.
func (d *Directory) FindByMemberID(ctx context.Context, memberID int64) (int, error) {
	rows, err := d.store.Rows(ctx)
	if err != nil {
		return 0, err
	}
	for i, cells := range rows {
		if len(cells) < models.ColMemberID {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(cells[models.ColMemberID-1]), 10, 64)
		if err != nil {
			continue
		}
		if id == memberID {
			return i + 1, nil
		}
	}
	return 0, models.ErrAccountNotFound
}

// FindByHandle matches the handle column case-insensitively, with any
// leading @ stripped from both sides.
func (d *Directory) FindByHandle(ctx context.Context, handle string) (int, error) {
	want := strings.ToLower(strings.TrimPrefix(handle, "@"))
	if want == "" {
		return 0, models.ErrAccountNotFound
	}

	rows, err := d.store.Rows(ctx)
	if err != nil {
		return 0, err
	}
	for i, cells := range rows {
		if len(cells) < models.ColHandle {
			continue
		}
		stored := strings.ToLower(strings.TrimPrefix(cells[models.ColHandle-1], "@"))
		if stored != "" && stored == want {
			return i + 1, nil
		}
	}
	return 0, models.ErrAccountNotFound
}

// Create appends a new account row. Fails with ErrAccountExists when
// the member already holds an account.
func (d *Directory) Create(ctx context.Context, acct models.Account) error {
	_, err := d.FindByMemberID(ctx, acct.MemberID)
	if err == nil {
		return models.ErrAccountExists
	}
	if !errors.Is(err, models.ErrAccountNotFound) {
		return err
	}
	return d.store.Append(ctx, acct.ToRow())
}

// Get loads and deserializes the account at the given row.
func (d *Directory) Get(ctx context.Context, row int) (models.Account, error) {
	cells, err := d.store.Row(ctx, row)
	if err != nil {
		return models.Account{}, err
	}
	return models.AccountFromRow(row, cells)
}
