package models

import (
	"time"

	"banker/money"
)

// TransactionFlags is a bitset of ledger row states.
type TransactionFlags uint32

const (
	// FundsAvailable marks the row's amount as spendable.
	FundsAvailable TransactionFlags = 1 << iota
)

// Has reports whether all bits in flag are set.
func (f TransactionFlags) Has(flag TransactionFlags) bool {
	return f&flag == flag
}

// Transaction is one half of a double-entry ledger movement. Rows are
// append-only: once the protocol links the pair, neither row is updated or
// deleted again. A row whose LinkedTransactionID is nil after its
// counterpart was never written is an orphan.
type Transaction struct {
	ID                  int64
	AccountID           int64
	Amount              money.Money
	Flags               TransactionFlags
	OccurredAt          time.Time
	LinkedTransactionID *int64
}
