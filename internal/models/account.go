package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Fixed column layout of the ledger sheet, 1-based to match the
// row store's coordinate convention.
const (
	ColMemberID      = 1
	ColDisplayName   = 2
	ColHandle        = 3
	ColProfileLink   = 4
	ColBalance       = 5
	ColLastUpdated   = 6
	ColTransactions  = 7
	ColContributions = 8

	ColumnCount = 8
)

// TimestampLayout is the human-readable format stored in the
// lastUpdated column and embedded in transaction log entries.
const TimestampLayout = "01-02-2006, 03:04 PM"

// Account is one ledger row for a community member. Balance is an
// integer in currency units; Contributions maps an admin's name to the
// cumulative net amount they have added to this account.
type Account struct {
	Row           int // 1-based sheet row, 0 when not yet stored
	MemberID      int64
	DisplayName   string
	Handle        string
	ProfileLink   string
	Balance       int64
	LastUpdated   string
	Transactions  string
	Contributions map[string]int64
}

// NewAccount returns a fresh account with zero balance, an empty
// transaction log and no contributions.
func NewAccount(memberID int64, displayName, handle, profileLink string, now time.Time) Account {
	return Account{
		MemberID:      memberID,
		DisplayName:   displayName,
		Handle:        handle,
		ProfileLink:   profileLink,
		LastUpdated:   now.Format(TimestampLayout),
		Contributions: map[string]int64{},
	}
}

// ToRow serializes the account into the fixed column layout.
func (a Account) ToRow() []string {
	return []string{
		strconv.FormatInt(a.MemberID, 10),
		a.DisplayName,
		a.Handle,
		a.ProfileLink,
		strconv.FormatInt(a.Balance, 10),
		a.LastUpdated,
		a.Transactions,
		EncodeContributions(a.Contributions),
	}
}

// AccountFromRow deserializes a stored row. Missing trailing cells are
// treated as empty; a malformed balance cell is an error because every
// mutation depends on it, while malformed contributions degrade to an
// empty map (fail-soft read path).
func AccountFromRow(row int, cells []string) (Account, error) {
	get := func(col int) string {
		if col-1 < len(cells) {
			return cells[col-1]
		}
		return ""
	}

	id, err := strconv.ParseInt(get(ColMemberID), 10, 64)
	if err != nil {
		return Account{}, ErrMalformedData
	}

	balance := int64(0)
	if raw := get(ColBalance); raw != "" {
		balance, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Account{}, ErrMalformedData
		}
	}

	return Account{
		Row:           row,
		MemberID:      id,
		DisplayName:   get(ColDisplayName),
		Handle:        get(ColHandle),
		ProfileLink:   get(ColProfileLink),
		Balance:       balance,
		LastUpdated:   get(ColLastUpdated),
		Transactions:  get(ColTransactions),
		Contributions: ParseContributions(get(ColContributions)),
	}, nil
}

// ParseContributions decodes the contributions JSON cell. Empty or
// unparseable cells yield an empty map rather than an error.
func ParseContributions(raw string) map[string]int64 {
	out := map[string]int64{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return map[string]int64{}
	}
	return out
}

// EncodeContributions serializes the contributions map for storage.
// An empty map encodes as the empty string so a cleared account leaves
// a blank cell.
func EncodeContributions(contribs map[string]int64) string {
	if len(contribs) == 0 {
		return ""
	}
	data, err := json.Marshal(contribs)
	if err != nil {
		return ""
	}
	return string(data)
}
