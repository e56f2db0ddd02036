package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"banker/events"
	"banker/models"
	"banker/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testWorldID = int64(1)

// newAccountFixture wires an accountService over mocked account storage
// and a real ledger backed by the in-memory store.
func newAccountFixture(t *testing.T, startingMoney money.Money) (*MockAccountRepository, *memLedgerStore, *events.Bus, AccountService) {
	t.Helper()
	repo := new(MockAccountRepository)
	store := newMemLedgerStore()
	bus := events.NewBus()
	ledger := NewLedgerService(store, bus)
	svc := NewAccountService(repo, ledger, bus, testWorldID, startingMoney, true)
	return repo, store, bus, svc
}

func TestGetOrCreateAccount_Existing(t *testing.T) {
	ctx := context.Background()
	repo, store, _, svc := newAccountFixture(t, 0)

	existing := newTestAccount(7, "alice", models.AccountEnabled, 0)
	store.seed(existing.ID, 1234)
	repo.On("GetByOwnerName", ctx, "alice").Return(existing, nil)

	account, err := svc.GetOrCreateAccount(ctx, "alice")
	require.NoError(t, err)
	require.Same(t, existing, account)

	// The cached balance is refreshed from the row sum on load.
	assert.Equal(t, money.Money(1234), account.Balance())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrCreateAccount_New(t *testing.T) {
	ctx := context.Background()
	repo, store, _, svc := newAccountFixture(t, money.Money(10000))

	world := newTestAccount(1, WorldAccountName, models.AccountEnabled|models.AccountSystem, 0)
	repo.On("GetByOwnerName", ctx, WorldAccountName).Return(world, nil)
	_, err := svc.EnsureWorldAccount(ctx)
	require.NoError(t, err)

	created := newTestAccount(2, "bob", models.AccountEnabled, 0)
	repo.On("GetByOwnerName", ctx, "bob").Return(nil, nil)
	repo.On("Create", ctx, "bob", testWorldID, models.AccountEnabled).Return(created, nil)

	account, err := svc.GetOrCreateAccount(ctx, "bob")
	require.NoError(t, err)
	require.Same(t, created, account)

	// Starting money arrives as an ordinary world-to-player transfer,
	// so the row set already carries it.
	assert.Equal(t, money.Money(10000), account.Balance())
	sum, err := store.SumForAccount(ctx, world.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Money(-10000), sum)
	assert.Equal(t, 2, store.rowCount())
}

func TestGetOrCreateAccount_DisabledByDefault(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccountRepository)
	store := newMemLedgerStore()
	bus := events.NewBus()
	svc := NewAccountService(repo, NewLedgerService(store, bus), bus, testWorldID, 0, false)

	created := newTestAccount(2, "bob", 0, 0)
	repo.On("GetByOwnerName", ctx, "bob").Return(nil, nil)
	repo.On("Create", ctx, "bob", testWorldID, models.AccountFlags(0)).Return(created, nil)

	account, err := svc.GetOrCreateAccount(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, account.IsEnabled())
}

func TestGetOrCreateAccount_CreateRaceLoserRereads(t *testing.T) {
	ctx := context.Background()
	repo, store, _, svc := newAccountFixture(t, 0)

	winner := newTestAccount(9, "carol", models.AccountEnabled, 0)
	store.seed(winner.ID, 500)

	repo.On("GetByOwnerName", ctx, "carol").Return(nil, nil).Once()
	repo.On("Create", ctx, "carol", testWorldID, models.AccountEnabled).
		Return(nil, errors.New("duplicate key value violates unique constraint"))
	repo.On("GetByOwnerName", ctx, "carol").Return(winner, nil)

	account, err := svc.GetOrCreateAccount(ctx, "carol")
	require.NoError(t, err)
	require.Same(t, winner, account)
	assert.Equal(t, money.Money(500), account.Balance())
}

func TestSetAccountEnabled(t *testing.T) {
	ctx := context.Background()
	repo, _, bus, svc := newAccountFixture(t, 0)

	changed := make(chan events.AccountFlagsChangedEvent, 1)
	bus.Subscribe(events.EventTypeAccountFlagsChanged, func(ctx context.Context, event events.Event) {
		changed <- event.(events.AccountFlagsChangedEvent)
	})

	account := newTestAccount(7, "alice", models.AccountEnabled, 0)
	repo.On("UpdateFlags", ctx, account.ID, models.AccountFlags(0)).Return(nil)

	require.NoError(t, svc.SetAccountEnabled(ctx, account, 42, false))
	assert.False(t, account.IsEnabled())

	select {
	case event := <-changed:
		assert.Equal(t, account.ID, event.AccountID)
		assert.Equal(t, int64(42), event.ActorID)
		assert.False(t, event.NewFlags.Has(models.AccountEnabled))
	case <-time.After(2 * time.Second):
		t.Fatal("flags changed event never fired")
	}
}

func TestSetAccountEnabled_PersistenceFailureLeavesFlagsUntouched(t *testing.T) {
	ctx := context.Background()
	repo, _, bus, svc := newAccountFixture(t, 0)

	fired := make(chan struct{}, 1)
	bus.Subscribe(events.EventTypeAccountFlagsChanged, func(ctx context.Context, event events.Event) {
		fired <- struct{}{}
	})

	account := newTestAccount(7, "alice", models.AccountEnabled, 0)
	repo.On("UpdateFlags", ctx, account.ID, mock.Anything).Return(errors.New("connection reset"))

	err := svc.SetAccountEnabled(ctx, account, 42, false)
	require.Error(t, err)

	// The in-memory account keeps its old flags and no event is published.
	assert.True(t, account.IsEnabled())
	select {
	case <-fired:
		t.Fatal("event published despite persistence failure")
	case <-time.After(100 * time.Millisecond):
	}
}

// Any caller holding the account pointer can toggle the flag. The caller
// decides who is allowed to; the service only records who did.
func TestSetAccountEnabled_NoCallerAuthorization(t *testing.T) {
	ctx := context.Background()
	repo, _, _, svc := newAccountFixture(t, 0)

	account := newTestAccount(7, "alice", models.AccountEnabled, 0)
	repo.On("UpdateFlags", ctx, account.ID, mock.Anything).Return(nil)

	const unprivilegedActor = int64(999)
	require.NoError(t, svc.SetAccountEnabled(ctx, account, unprivilegedActor, false))
	assert.False(t, account.IsEnabled())
}

func TestEnsureWorldAccount(t *testing.T) {
	ctx := context.Background()
	repo, store, _, svc := newAccountFixture(t, 0)

	require.Nil(t, svc.WorldAccount())

	world := newTestAccount(1, WorldAccountName, models.AccountEnabled|models.AccountSystem, 0)
	store.seed(world.ID, -2500)
	repo.On("GetByOwnerName", ctx, WorldAccountName).Return(nil, nil).Once()
	repo.On("Create", ctx, WorldAccountName, testWorldID, models.AccountEnabled.With(models.AccountSystem)).
		Return(world, nil)

	account, err := svc.EnsureWorldAccount(ctx)
	require.NoError(t, err)
	require.Same(t, world, account)
	assert.True(t, account.IsSystem())
	assert.Equal(t, money.Money(-2500), account.Balance())
	require.Same(t, world, svc.WorldAccount())
}
