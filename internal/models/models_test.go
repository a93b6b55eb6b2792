package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "500", want: 500},
		{in: "0", want: 0},
		{in: "-25", want: -25},
		{in: "1500", want: 1500},
		{in: "1.5", wantErr: true},
		{in: "0.01", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidAmount, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestAccountRowRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
	acct := NewAccount(42, "Ava Rivers", "@ava", "<a href=\"tg://user?id=42\">Ava</a>", now)
	acct.Balance = 1500
	acct.Transactions = "06-01-2024, 02:30 PM + ₱1500 root"
	acct.Contributions = map[string]int64{"root": 1500}

	got, err := AccountFromRow(3, acct.ToRow())
	require.NoError(t, err)

	acct.Row = 3
	assert.Equal(t, acct, got)
}

func TestAccountFromRowShortAndMalformed(t *testing.T) {
	// Trailing cells missing entirely: fresh rows often lack log and
	// contribution cells.
	acct, err := AccountFromRow(1, []string{"42", "Ava", "@ava"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), acct.MemberID)
	assert.Zero(t, acct.Balance)
	assert.Empty(t, acct.Contributions)

	_, err = AccountFromRow(1, []string{"Member ID", "header"})
	assert.ErrorIs(t, err, ErrMalformedData)

	_, err = AccountFromRow(1, []string{"42", "Ava", "@ava", "", "lots"})
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestContributionsEncoding(t *testing.T) {
	assert.Empty(t, EncodeContributions(nil))
	assert.Empty(t, EncodeContributions(map[string]int64{}))

	encoded := EncodeContributions(map[string]int64{"riv": 200})
	assert.Equal(t, map[string]int64{"riv": 200}, ParseContributions(encoded))

	assert.Empty(t, ParseContributions(""))
	assert.Empty(t, ParseContributions("{broken"))
	assert.Empty(t, ParseContributions(`{"riv":"not-a-number"}`))
}

func TestTransferIDIsDistinctPerInstant(t *testing.T) {
	at := time.Now()
	a := TransferID(1, 2, 100, at)
	b := TransferID(1, 2, 100, at.Add(time.Nanosecond))
	assert.NotEqual(t, a, b)
}
