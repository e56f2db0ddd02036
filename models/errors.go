package models

import "errors"

var (
	// ErrInsufficientFunds means the transfer eligibility check failed; no
	// ledger rows were written.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPersistenceFailure means a store write did not produce a valid row
	// id mid-protocol. Previously written rows remain as orphans; the
	// transfer is not retried.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrNotFound means the referenced player or account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAccountNotLoaded means the session's account load has not finished
	// yet. Operations fail with this rather than block.
	ErrAccountNotLoaded = errors.New("account not loaded")
)
