package repository

import (
	"context"
	"fmt"
	"time"

	"banker/database"
	"banker/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository persists ledger accounts.
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// NewAccountRepositoryWithTx creates a new account repository bound to a transaction
func NewAccountRepositoryWithTx(tx pgx.Tx) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var (
		id        int64
		ownerName string
		worldID   int64
		flags     uint32
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &ownerName, &worldID, &flags, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return models.NewAccount(id, ownerName, worldID, models.AccountFlags(flags), createdAt, updatedAt), nil
}

// GetByOwnerName retrieves an account by its owner's name. Returns nil
// without error when no account exists.
func (r *AccountRepository) GetByOwnerName(ctx context.Context, ownerName string) (*models.Account, error) {
	query := `
		SELECT id, owner_name, world_id, flags, created_at, updated_at
		FROM accounts
		WHERE owner_name = $1
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, ownerName))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for owner %q: %w", ownerName, err)
	}

	return account, nil
}

// GetByID retrieves an account by its row id. Returns nil without error
// when no account exists.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		SELECT id, owner_name, world_id, flags, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}

	return account, nil
}

// Create creates a new account with the given flag set.
func (r *AccountRepository) Create(ctx context.Context, ownerName string, worldID int64, flags models.AccountFlags) (*models.Account, error) {
	query := `
		INSERT INTO accounts (owner_name, world_id, flags)
		VALUES ($1, $2, $3)
		RETURNING id, owner_name, world_id, flags, created_at, updated_at
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, ownerName, worldID, uint32(flags)))
	if err != nil {
		return nil, fmt.Errorf("failed to create account for owner %q: %w", ownerName, err)
	}

	return account, nil
}

// UpdateFlags persists a new flag set for the account.
func (r *AccountRepository) UpdateFlags(ctx context.Context, accountID int64, flags models.AccountFlags) error {
	query := `
		UPDATE accounts
		SET flags = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, uint32(flags), accountID)
	if err != nil {
		return fmt.Errorf("failed to update flags for account %d: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", accountID, models.ErrNotFound)
	}

	return nil
}

// GetAll returns all accounts
func (r *AccountRepository) GetAll(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT id, owner_name, world_id, flags, created_at, updated_at
		FROM accounts
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}
