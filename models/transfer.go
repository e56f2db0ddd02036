package models

import (
	"banker/money"
)

// TransferOptions is a bitset of options considered when moving money.
type TransferOptions uint32

const (
	// AnnounceToReceiver announces the payment to the receiving player.
	AnnounceToReceiver TransferOptions = 1 << iota
	// AnnounceToSender announces the payment to the paying player.
	AnnounceToSender
	// AllowDeficitOnNormalAccount bypasses the balance-sufficiency check
	// for a normal player account.
	AllowDeficitOnNormalAccount
	// MoneyFromPvP marks the transfer as a PvP penalty.
	MoneyFromPvP
	// MoneyTakenOnDeath marks money taken because the player died.
	MoneyTakenOnDeath
	// PlayerToPlayerTransfer marks a voluntary player-to-player payment.
	// PvP penalties are forced and set MoneyFromPvP instead.
	PlayerToPlayerTransfer
	// IsPayment marks a payment for something tangible.
	IsPayment
	// SuppressDefaultAnnouncements silences the built-in announcement
	// subscribers; modules with their own messaging set this and listen on
	// the transfer-completed event.
	SuppressDefaultAnnouncements
)

// Has reports whether all bits in flag are set.
func (o TransferOptions) Has(flag TransferOptions) bool {
	return o&flag == flag
}

// TransferOptionNone is a silent, normal payment.
const TransferOptionNone TransferOptions = 0

// TransferResult describes the outcome of a transfer. It is published on
// the event bus once the protocol finishes, whether or not the initiator
// awaited the operation.
type TransferResult struct {
	Succeeded     bool
	Amount        money.Money
	From          *Account
	To            *Account
	TransactionID int64
	Options       TransferOptions
	Err           error
}
