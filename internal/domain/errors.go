package domain

import "errors"

// Errors returned by the ledger, staff and reports packages. Handlers map
// them to HTTP status codes; anything wrapping ErrStore is a server error.
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMissingField      = errors.New("missing required field")
	ErrDuplicateEmployee = errors.New("employee already exists")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrNotFound          = errors.New("not found")
	ErrStore             = errors.New("store failure")
)
