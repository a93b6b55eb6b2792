package events

import "time"

// LedgerMutation is the audit event emitted after every successful
// balance mutation (add, use, transfer legs, clear).
type LedgerMutation struct {
	EventID    string    `json:"event_id"`
	Kind       string    `json:"kind"`
	Actor      string    `json:"actor"`
	MemberID   int64     `json:"member_id"`
	Amount     int64     `json:"amount"`
	NewBalance int64     `json:"new_balance"`
	OccurredAt time.Time `json:"occurred_at"`
}
