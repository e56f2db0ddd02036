package service

import (
	"context"
	"time"

	"banker/events"
	"banker/models"
	"banker/money"

	log "github.com/sirupsen/logrus"
)

type ledgerService struct {
	transactions TransactionRepository
	bus          *events.Bus
}

// NewLedgerService creates a new ledger service
func NewLedgerService(transactions TransactionRepository, bus *events.Bus) LedgerService {
	return &ledgerService{
		transactions: transactions,
		bus:          bus,
	}
}

// MayTransfer is the transfer eligibility predicate. System and plugin
// accounts may always pay; everyone may always receive. A normal source
// account needs a sufficient cached balance unless the deficit override is
// set.
func MayTransfer(from, to *models.Account, amount money.Money, opts models.TransferOptions) bool {
	if from == nil || to == nil {
		return false
	}
	return from.IsSystem() ||
		from.IsPlugin() ||
		opts.Has(models.AllowDeficitOnNormalAccount) ||
		from.Balance() >= amount
}

// Transfer runs the four-step double-entry protocol:
//
//	(1) insert the source row for -amount
//	(2) insert the destination row for +amount, linked back to the source
//	(3) write the destination id into the source row (the commit point)
//	(4) refresh both cached balances from their row sums
//
// A store failure after the eligibility check skips the remaining steps
// and leaves the already-written rows as orphans; the failure is reported,
// never retried. The completed result is always published on the bus.
func (s *ledgerService) Transfer(ctx context.Context, from, to *models.Account, amount money.Money, opts models.TransferOptions) *models.TransferResult {
	result := &models.TransferResult{
		Amount:  amount,
		From:    from,
		To:      to,
		Options: opts,
	}
	defer s.bus.Emit(ctx, events.TransferCompletedEvent{Result: result})

	if from == nil || to == nil {
		result.Err = models.ErrNotFound
		return result
	}

	if !MayTransfer(from, to, amount, opts) {
		log.WithFields(log.Fields{
			"from":    from.OwnerName,
			"to":      to.OwnerName,
			"amount":  amount.String(),
			"balance": from.Balance().String(),
		}).Debug("Transfer rejected: insufficient funds")
		result.Err = models.ErrInsufficientFunds
		return result
	}

	sourceID, err := s.transactions.Insert(ctx, from.ID, amount.Neg(), models.FundsAvailable, nil)
	if err != nil || sourceID == 0 {
		log.WithFields(log.Fields{
			"from":  from.OwnerName,
			"to":    to.OwnerName,
			"error": err,
		}).Error("Transfer aborted: source row insert failed")
		result.Err = models.ErrPersistenceFailure
		return result
	}

	destID, err := s.transactions.Insert(ctx, to.ID, amount, models.FundsAvailable, &sourceID)
	if err != nil || destID == 0 {
		log.WithFields(log.Fields{
			"from":     from.OwnerName,
			"to":       to.OwnerName,
			"sourceID": sourceID,
			"error":    err,
		}).Warn("Transfer aborted: destination row insert failed, source row orphaned")
		result.Err = models.ErrPersistenceFailure
		return result
	}

	if err := s.transactions.Link(ctx, sourceID, destID); err != nil {
		log.WithFields(log.Fields{
			"from":     from.OwnerName,
			"to":       to.OwnerName,
			"sourceID": sourceID,
			"destID":   destID,
			"error":    err,
		}).Warn("Transfer aborted: link step failed, row pair orphaned")
		result.Err = models.ErrPersistenceFailure
		return result
	}

	// The pair is bound; a sync failure here only leaves a stale cache.
	if err := s.SyncBalance(ctx, from); err != nil {
		log.WithField("account", from.OwnerName).Warnf("Balance sync failed after transfer: %v", err)
	}
	if err := s.SyncBalance(ctx, to); err != nil {
		log.WithField("account", to.OwnerName).Warnf("Balance sync failed after transfer: %v", err)
	}

	result.Succeeded = true
	result.TransactionID = sourceID

	log.WithFields(log.Fields{
		"from":          from.OwnerName,
		"to":            to.OwnerName,
		"amount":        amount.String(),
		"transactionID": sourceID,
	}).Debug("Transfer completed")

	return result
}

// TransferAndForget starts the transfer without awaiting its outcome. The
// caller forfeits the synchronous result only; the protocol still runs to
// completion and publishes its event.
func (s *ledgerService) TransferAndForget(ctx context.Context, from, to *models.Account, amount money.Money, opts models.TransferOptions) {
	go s.Transfer(context.WithoutCancel(ctx), from, to, amount, opts)
}

// SyncBalance resums the account's transaction rows and replaces the
// cached balance snapshot.
func (s *ledgerService) SyncBalance(ctx context.Context, account *models.Account) error {
	sum, err := s.transactions.SumForAccount(ctx, account.ID)
	if err != nil {
		return err
	}
	account.SetBalance(sum)
	return nil
}

// FindOrphans reports ledger rows whose double-entry link was never
// written and which are older than the given age. The ledger never cleans
// these up on its own; the sweep exists so an operator can.
func (s *ledgerService) FindOrphans(ctx context.Context, olderThan time.Duration) ([]*models.Transaction, error) {
	return s.transactions.UnlinkedBefore(ctx, time.Now().UTC().Add(-olderThan))
}
