package service

import (
	"context"
	"time"

	"banker/models"
	"banker/money"
)

// AccountRepository provides access to persisted account records
type AccountRepository interface {
	// GetByOwnerName retrieves an account by its owner's name, nil if none exists
	GetByOwnerName(ctx context.Context, ownerName string) (*models.Account, error)

	// GetByID retrieves an account by row id, nil if none exists
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// Create creates a new account with the given flag set
	Create(ctx context.Context, ownerName string, worldID int64, flags models.AccountFlags) (*models.Account, error)

	// UpdateFlags persists a new flag set for the account
	UpdateFlags(ctx context.Context, accountID int64, flags models.AccountFlags) error

	// GetAll returns all accounts
	GetAll(ctx context.Context) ([]*models.Account, error)
}

// TransactionRepository provides access to the append-only ledger rows
type TransactionRepository interface {
	// Insert appends a ledger row and returns its id
	Insert(ctx context.Context, accountID int64, amount money.Money, flags models.TransactionFlags, linkedID *int64) (int64, error)

	// Link writes the destination row id into the source row, completing
	// the double-entry pair
	Link(ctx context.Context, sourceID, destID int64) error

	// SumForAccount sums all ledger rows for an account
	SumForAccount(ctx context.Context, accountID int64) (money.Money, error)

	// GetByID retrieves a single ledger row, nil if none exists
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)

	// UnlinkedBefore returns orphaned rows older than the cutoff
	UnlinkedBefore(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error)
}

// LedgerService is the double-entry transfer engine. It is the only
// component that touches the persistent ledger during a money movement.
type LedgerService interface {
	// Transfer moves money between two accounts and blocks until the
	// protocol finishes. The result is also published on the event bus.
	Transfer(ctx context.Context, from, to *models.Account, amount money.Money, opts models.TransferOptions) *models.TransferResult

	// TransferAndForget runs the same protocol without exposing the result;
	// the transfer still runs to completion and still publishes its event.
	TransferAndForget(ctx context.Context, from, to *models.Account, amount money.Money, opts models.TransferOptions)

	// SyncBalance refreshes the account's cached balance from the row sum.
	SyncBalance(ctx context.Context, account *models.Account) error

	// FindOrphans reports rows whose double-entry link was never written.
	FindOrphans(ctx context.Context, olderThan time.Duration) ([]*models.Transaction, error)
}

// AccountService owns account lifecycle and the flag state machine.
type AccountService interface {
	// GetOrCreateAccount loads the durable account for an owner, creating
	// it with default flags and the starting grant when none exists.
	GetOrCreateAccount(ctx context.Context, ownerName string) (*models.Account, error)

	// SetAccountEnabled persists and applies the Enabled flag transition.
	// Authorization is owned by the calling command layer, not here.
	SetAccountEnabled(ctx context.Context, account *models.Account, actorID int64, enabled bool) error

	// EnsureWorldAccount loads or creates the distinguished system account.
	EnsureWorldAccount(ctx context.Context) (*models.Account, error)

	// WorldAccount returns the world account, nil before EnsureWorldAccount.
	WorldAccount() *models.Account
}

// GrantService issues world-to-player grants and confiscations.
type GrantService interface {
	// Give pays the amount from the world account to the target account.
	Give(ctx context.Context, to *models.Account, amount money.Money) *models.TransferResult

	// Take removes the amount from the target account back into the world
	// account. Positive amounts are negated before transfer so a negative
	// "take" cannot be smuggled in as a gift.
	Take(ctx context.Context, to *models.Account, amount money.Money) *models.TransferResult
}
