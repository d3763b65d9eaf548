package cashbox

import "errors"

// The reference behavior absorbed most of these silently; here they are
// explicit so the API layer can map them to proper statuses.
var (
	ErrCashBoxNotFound            = errors.New("cash box not found for branch")
	ErrCashBoxExists              = errors.New("cash box already exists for branch")
	ErrTransactionNotFound        = errors.New("cash box transaction not found")
	ErrTransferNotFound           = errors.New("cash transfer not found")
	ErrInvalidTransferState       = errors.New("cash transfer is not pending")
	ErrUnsupportedTransactionType = errors.New("unsupported transaction type")
	ErrInvalidAmount              = errors.New("amount must not be negative")
)
