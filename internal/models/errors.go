package models

import "errors"

// Error taxonomy shared by the directory, ledger, transfer and access
// components. Handlers match with errors.Is and translate into short
// user-visible replies.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrAlreadyManager    = errors.New("already a manager")
	ErrNotManager        = errors.New("not a manager")
	ErrTransferExpired   = errors.New("transfer expired")
	ErrTransferNotOwner  = errors.New("not the transfer owner")
	ErrSelfTransfer      = errors.New("cannot transfer to self")
	ErrStoreUnavailable  = errors.New("ledger store unavailable")
	ErrMalformedData     = errors.New("malformed stored data")
)
