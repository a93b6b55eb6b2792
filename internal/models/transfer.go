package models

import (
	"fmt"
	"time"
)

// PendingTransfer is an unconfirmed peer transfer proposal. It lives
// only in process memory; a restart drops it and the sender sees the
// proposal as expired.
type PendingTransfer struct {
	ID         string
	SenderID   int64
	SenderRow  int
	TargetRow  int
	TargetName string
	Amount     int64
	CreatedAt  time.Time
}

// TransferID derives a proposal id from the parties, the amount and
// the creation instant. The id rides inside a callback payload, so it
// must stay short and stable between propose and confirm.
func TransferID(senderID, targetID, amount int64, at time.Time) string {
	return fmt.Sprintf("%d_%d_%d_%d", senderID, targetID, amount, at.UnixNano())
}
