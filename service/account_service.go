package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"banker/events"
	"banker/models"
	"banker/money"

	log "github.com/sirupsen/logrus"
)

// WorldAccountName is the owner name of the distinguished system account
// used as the source for disbursements and world-to-player grants.
const WorldAccountName = "world"

type accountService struct {
	accounts AccountRepository
	ledger   LedgerService
	bus      *events.Bus

	worldID        int64
	startingMoney  money.Money
	enabledDefault bool

	world atomic.Pointer[models.Account]
}

// NewAccountService creates a new account service
func NewAccountService(accounts AccountRepository, ledger LedgerService, bus *events.Bus, worldID int64, startingMoney money.Money, enabledDefault bool) AccountService {
	return &accountService{
		accounts:       accounts,
		ledger:         ledger,
		bus:            bus,
		worldID:        worldID,
		startingMoney:  startingMoney,
		enabledDefault: enabledDefault,
	}
}

func (s *accountService) GetOrCreateAccount(ctx context.Context, ownerName string) (*models.Account, error) {
	account, err := s.accounts.GetByOwnerName(ctx, ownerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if account == nil {
		var flags models.AccountFlags
		if s.enabledDefault {
			flags = flags.With(models.AccountEnabled)
		}

		account, err = s.accounts.Create(ctx, ownerName, s.worldID, flags)
		if err != nil {
			// Two sessions can race to create the same owner; the unique
			// constraint decides and the loser re-reads.
			account, getErr := s.accounts.GetByOwnerName(ctx, ownerName)
			if getErr != nil || account == nil {
				return nil, fmt.Errorf("failed to create account for %q: %w", ownerName, err)
			}
			if syncErr := s.ledger.SyncBalance(ctx, account); syncErr != nil {
				return nil, fmt.Errorf("failed to sync balance for %q: %w", ownerName, syncErr)
			}
			return account, nil
		}

		log.WithFields(log.Fields{
			"owner":   ownerName,
			"worldID": s.worldID,
		}).Info("Created new account")

		// The starting money is granted from the world account as an
		// ordinary double-entry transfer, so the ledger stays the single
		// source of truth for every balance.
		if world := s.world.Load(); world != nil && s.startingMoney != 0 {
			grant := s.ledger.Transfer(ctx, world, account, s.startingMoney, models.TransferOptionNone)
			if !grant.Succeeded {
				log.WithField("owner", ownerName).Warnf("Starting money grant failed: %v", grant.Err)
			}
			return account, nil
		}
	}

	if err := s.ledger.SyncBalance(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to sync balance for %q: %w", ownerName, err)
	}

	return account, nil
}

// SetAccountEnabled persists the new flag set first. Only a successful
// write mutates the in-memory flags and publishes the change; on failure
// the account is left exactly as it was and no event fires.
func (s *accountService) SetAccountEnabled(ctx context.Context, account *models.Account, actorID int64, enabled bool) error {
	newFlags := account.Flags()
	if enabled {
		newFlags = newFlags.With(models.AccountEnabled)
	} else {
		newFlags = newFlags.Without(models.AccountEnabled)
	}

	if err := s.accounts.UpdateFlags(ctx, account.ID, newFlags); err != nil {
		return fmt.Errorf("failed to persist flags for account %d: %w", account.ID, err)
	}

	account.SetFlags(newFlags)

	s.bus.Emit(ctx, events.AccountFlagsChangedEvent{
		AccountID: account.ID,
		ActorID:   actorID,
		NewFlags:  newFlags,
	})

	log.WithFields(log.Fields{
		"account": account.OwnerName,
		"actorID": actorID,
		"enabled": enabled,
	}).Info("Account enabled flag changed")

	return nil
}

func (s *accountService) EnsureWorldAccount(ctx context.Context) (*models.Account, error) {
	account, err := s.accounts.GetByOwnerName(ctx, WorldAccountName)
	if err != nil {
		return nil, fmt.Errorf("failed to get world account: %w", err)
	}

	if account == nil {
		account, err = s.accounts.Create(ctx, WorldAccountName, s.worldID, models.AccountEnabled.With(models.AccountSystem))
		if err != nil {
			return nil, fmt.Errorf("failed to create world account: %w", err)
		}
		log.WithField("worldID", s.worldID).Info("Created world account")
	}

	if err := s.ledger.SyncBalance(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to sync world account balance: %w", err)
	}

	s.world.Store(account)
	return account, nil
}

func (s *accountService) WorldAccount() *models.Account {
	return s.world.Load()
}
