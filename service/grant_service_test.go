package service

import (
	"context"
	"testing"

	"banker/models"
	"banker/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGrantFixture(t *testing.T) (*memLedgerStore, *models.Account, GrantService) {
	t.Helper()
	ctx := context.Background()
	repo, store, bus, accounts := newAccountFixture(t, 0)

	world := newTestAccount(1, WorldAccountName, models.AccountEnabled|models.AccountSystem, 0)
	repo.On("GetByOwnerName", ctx, WorldAccountName).Return(world, nil)
	_, err := accounts.EnsureWorldAccount(ctx)
	require.NoError(t, err)

	return store, world, NewGrantService(accounts, NewLedgerService(store, bus))
}

func TestGive(t *testing.T) {
	ctx := context.Background()
	store, world, grants := newGrantFixture(t)

	player := newTestAccount(2, "alice", models.AccountEnabled, 0)

	result := grants.Give(ctx, player, money.MustParse("1g"))

	require.True(t, result.Succeeded)
	assert.True(t, result.Options.Has(models.AnnounceToReceiver))
	assert.Equal(t, money.Money(10000), player.Balance())
	assert.Equal(t, money.Money(-10000), world.Balance())
	assert.Equal(t, 2, store.rowCount())
}

func TestTake(t *testing.T) {
	ctx := context.Background()
	store, world, grants := newGrantFixture(t)

	player := newTestAccount(2, "alice", models.AccountEnabled, 0)
	store.seed(player.ID, 100)
	store.seed(world.ID, -100)

	result := grants.Take(ctx, player, 5)

	require.True(t, result.Succeeded)
	assert.Equal(t, money.Money(95), player.Balance())
	assert.Equal(t, money.Money(-95), world.Balance())
}

// A caller passing an already-negative amount to Take must not end up
// giving money away; the sign is left alone.
func TestTake_NegativeAmountStaysATake(t *testing.T) {
	ctx := context.Background()
	_, world, grants := newGrantFixture(t)

	player := newTestAccount(2, "alice", models.AccountEnabled, 0)

	result := grants.Take(ctx, player, money.Money(-5))

	require.True(t, result.Succeeded)
	assert.Equal(t, money.Money(-5), player.Balance())
	assert.Equal(t, money.Money(5), world.Balance())
}

func TestGive_NoWorldAccount(t *testing.T) {
	ctx := context.Background()
	_, store, bus, accounts := newAccountFixture(t, 0)
	grants := NewGrantService(accounts, NewLedgerService(store, bus))

	player := newTestAccount(2, "alice", models.AccountEnabled, 0)

	result := grants.Give(ctx, player, 100)
	assert.False(t, result.Succeeded)
	assert.ErrorIs(t, result.Err, models.ErrNotFound)
	assert.Equal(t, 0, store.rowCount())
}
