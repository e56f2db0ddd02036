package repository

import (
	"context"
	"fmt"
	"time"

	"banker/database"
	"banker/models"
	"banker/money"

	"github.com/jackc/pgx/v5"
)

// TransactionRepository persists the append-only ledger rows.
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// NewTransactionRepositoryWithTx creates a new transaction repository bound to a transaction
func NewTransactionRepositoryWithTx(tx pgx.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Insert appends a ledger row and returns its id. The linked id may be nil
// for a source row; the link step fills it in later.
func (r *TransactionRepository) Insert(ctx context.Context, accountID int64, amount money.Money, flags models.TransactionFlags, linkedID *int64) (int64, error) {
	query := `
		INSERT INTO transactions (account_id, amount, flags, linked_transaction_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.q.QueryRow(ctx, query, accountID, int64(amount), uint32(flags), linkedID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction for account %d: %w", accountID, err)
	}

	return id, nil
}

// Link binds the double-entry pair by writing the destination row id into
// the source row. This is the only update the ledger ever performs on a
// transaction row.
func (r *TransactionRepository) Link(ctx context.Context, sourceID, destID int64) error {
	query := `
		UPDATE transactions
		SET linked_transaction_id = $1
		WHERE id = $2 AND linked_transaction_id IS NULL
	`

	result, err := r.q.Exec(ctx, query, destID, sourceID)
	if err != nil {
		return fmt.Errorf("failed to link transaction %d to %d: %w", sourceID, destID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d not linkable: %w", sourceID, models.ErrNotFound)
	}

	return nil
}

// SumForAccount sums all ledger rows for an account. This is the durable
// source of truth behind every cached balance.
func (r *TransactionRepository) SumForAccount(ctx context.Context, accountID int64) (money.Money, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id = $1
	`

	var sum int64
	err := r.q.QueryRow(ctx, query, accountID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions for account %d: %w", accountID, err)
	}

	return money.Money(sum), nil
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var (
		tx     models.Transaction
		amount int64
		flags  uint32
	)
	if err := row.Scan(&tx.ID, &tx.AccountID, &amount, &flags, &tx.OccurredAt, &tx.LinkedTransactionID); err != nil {
		return nil, err
	}
	tx.Amount = money.Money(amount)
	tx.Flags = models.TransactionFlags(flags)
	return &tx, nil
}

// GetByID retrieves a single ledger row. Returns nil without error when no
// row exists.
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `
		SELECT id, account_id, amount, flags, occurred_at, linked_transaction_id
		FROM transactions
		WHERE id = $1
	`

	tx, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}

	return tx, nil
}

// UnlinkedBefore returns rows older than the cutoff whose link field was
// never written - the orphans a mid-protocol persistence failure leaves
// behind. The sweep only reports; nothing deletes ledger rows.
func (r *TransactionRepository) UnlinkedBefore(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error) {
	query := `
		SELECT id, account_id, amount, flags, occurred_at, linked_transaction_id
		FROM transactions
		WHERE linked_transaction_id IS NULL AND occurred_at < $1
		ORDER BY occurred_at
	`

	rows, err := r.q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query unlinked transactions: %w", err)
	}
	defer rows.Close()

	var orphans []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		orphans = append(orphans, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return orphans, nil
}
