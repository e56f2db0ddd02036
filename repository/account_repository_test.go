package repository

import (
	"context"
	"testing"

	"banker/models"
	"banker/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_GetByOwnerName(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no account found", func(t *testing.T) {
		account, err := repo.GetByOwnerName(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("account found", func(t *testing.T) {
		created, err := repo.Create(ctx, "alice", 42, models.AccountEnabled)
		require.NoError(t, err)
		require.NotNil(t, created)

		account, err := repo.GetByOwnerName(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.Equal(t, created.ID, account.ID)
		assert.Equal(t, "alice", account.OwnerName)
		assert.Equal(t, int64(42), account.WorldID)
		assert.True(t, account.IsEnabled())
		assert.False(t, account.CreatedAt.IsZero())
	})
}

func TestAccountRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("assigns id and defaults", func(t *testing.T) {
		account, err := repo.Create(ctx, "bob", 1, 0)
		require.NoError(t, err)
		assert.NotZero(t, account.ID)
		assert.False(t, account.IsEnabled())
		assert.Equal(t, int64(0), int64(account.Balance()), "new accounts carry no cached balance")
	})

	t.Run("preserves full flag set", func(t *testing.T) {
		flags := models.AccountEnabled.With(models.AccountSystem).With(models.AccountLockedToWorld)
		account, err := repo.Create(ctx, "world", 1, flags)
		require.NoError(t, err)
		assert.Equal(t, flags, account.Flags())
		assert.True(t, account.IsSystem())
		assert.True(t, account.IsLockedToWorld())
	})

	t.Run("duplicate owner rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, "carol", 1, models.AccountEnabled)
		require.NoError(t, err)

		_, err = repo.Create(ctx, "carol", 1, models.AccountEnabled)
		require.Error(t, err)
	})
}

func TestAccountRepository_UpdateFlags(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("persists new flag set", func(t *testing.T) {
		account, err := repo.Create(ctx, "alice", 1, models.AccountEnabled)
		require.NoError(t, err)

		err = repo.UpdateFlags(ctx, account.ID, account.Flags().Without(models.AccountEnabled))
		require.NoError(t, err)

		reloaded, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded)
		assert.False(t, reloaded.IsEnabled())
		assert.True(t, reloaded.UpdatedAt.After(account.UpdatedAt) || reloaded.UpdatedAt.Equal(account.UpdatedAt))
	})

	t.Run("unknown account", func(t *testing.T) {
		err := repo.UpdateFlags(ctx, 99999, models.AccountEnabled)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestAccountRepository_GetAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	accounts, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	for _, owner := range []string{"alice", "bob", "carol"} {
		_, err := repo.Create(ctx, owner, 1, models.AccountEnabled)
		require.NoError(t, err)
	}

	accounts, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)
}
