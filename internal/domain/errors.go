package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// Confirmation workflow.
	ErrNoPendingConfirmation = errors.New("no pending confirmation")
	ErrCodeMismatch          = errors.New("code mismatch")

	// Account operations.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDependency marks a failure of the mailer or a store.
	ErrDependency = errors.New("dependency failure")
)
