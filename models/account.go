package models

import (
	"sync/atomic"
	"time"

	"banker/money"
)

// AccountFlags is a bitset of account states. The bits are independent;
// only Enabled has a runtime transition, the rest are fixed at creation.
type AccountFlags uint32

const (
	// AccountEnabled gates whether the balance is shown to the unprivileged
	// owner. It never gates whether funds can move.
	AccountEnabled AccountFlags = 1 << iota
	// AccountSystem marks the world account; exempt from the
	// balance-sufficiency check and allowed to run negative indefinitely.
	AccountSystem
	// AccountLockedToWorld ties the account to the world it was created in.
	AccountLockedToWorld
	// AccountPlugin marks an account owned by an automated subsystem, also
	// exempt from the balance-sufficiency check.
	AccountPlugin
)

// Has reports whether all bits in flag are set.
func (f AccountFlags) Has(flag AccountFlags) bool {
	return f&flag == flag
}

// With returns the flag set with the given bits added.
func (f AccountFlags) With(flag AccountFlags) AccountFlags {
	return f | flag
}

// Without returns the flag set with the given bits cleared.
func (f AccountFlags) Without(flag AccountFlags) AccountFlags {
	return f &^ flag
}

// Account is one ledger participant. Identity fields are fixed once loaded;
// the flag set and the cached balance may be updated concurrently by the
// transfer protocol and the flag state machine, so both live behind
// atomics. The durable source of truth for the balance is the sum of the
// account's transaction rows; the cache is a point-in-time snapshot.
type Account struct {
	ID        int64
	OwnerName string
	WorldID   int64
	CreatedAt time.Time
	UpdatedAt time.Time

	flags   atomic.Uint32
	balance atomic.Int64
}

// NewAccount builds an in-memory account from its persisted fields.
func NewAccount(id int64, ownerName string, worldID int64, flags AccountFlags, createdAt, updatedAt time.Time) *Account {
	a := &Account{
		ID:        id,
		OwnerName: ownerName,
		WorldID:   worldID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	a.flags.Store(uint32(flags))
	return a
}

// Flags returns the current flag set.
func (a *Account) Flags() AccountFlags {
	return AccountFlags(a.flags.Load())
}

// SetFlags replaces the flag set. Callers persist the new set first; this
// only updates the in-memory copy.
func (a *Account) SetFlags(f AccountFlags) {
	a.flags.Store(uint32(f))
}

// Balance returns the cached balance snapshot. It may be briefly stale
// between two concurrent transfers' refresh steps.
func (a *Account) Balance() money.Money {
	return money.Money(a.balance.Load())
}

// SetBalance replaces the cached balance snapshot.
func (a *Account) SetBalance(m money.Money) {
	a.balance.Store(int64(m))
}

// IsEnabled reports whether the account is enabled.
func (a *Account) IsEnabled() bool {
	return a.Flags().Has(AccountEnabled)
}

// IsSystem reports whether this is a system (world) account.
func (a *Account) IsSystem() bool {
	return a.Flags().Has(AccountSystem)
}

// IsLockedToWorld reports whether the account is locked to its world.
func (a *Account) IsLockedToWorld() bool {
	return a.Flags().Has(AccountLockedToWorld)
}

// IsPlugin reports whether the account belongs to a plugin.
func (a *Account) IsPlugin() bool {
	return a.Flags().Has(AccountPlugin)
}
