package repository

import (
	"context"
	"errors"
	"testing"

	"banker/models"
	"banker/money"
	"banker/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoriesWithinTransaction(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	t.Run("commit makes both writes visible", func(t *testing.T) {
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			accounts := NewAccountRepositoryWithTx(tx)
			transactions := NewTransactionRepositoryWithTx(tx)

			account, err := accounts.Create(ctx, "alice", 1, models.AccountEnabled)
			if err != nil {
				return err
			}
			_, err = transactions.Insert(ctx, account.ID, money.Money(1000), models.FundsAvailable, nil)
			return err
		})
		require.NoError(t, err)

		accounts := NewAccountRepository(testDB.DB)
		account, err := accounts.GetByOwnerName(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, account)

		sum, err := NewTransactionRepository(testDB.DB).SumForAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, money.Money(1000), sum)
	})

	t.Run("error rolls back every write", func(t *testing.T) {
		boom := errors.New("boom")
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			accounts := NewAccountRepositoryWithTx(tx)
			if _, err := accounts.Create(ctx, "bob", 1, models.AccountEnabled); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		account, err := NewAccountRepository(testDB.DB).GetByOwnerName(ctx, "bob")
		require.NoError(t, err)
		assert.Nil(t, account)
	})
}
