package service

import (
	"context"
	"time"

	"banker/models"
	"banker/money"
	"banker/registry"

	log "github.com/sirupsen/logrus"
)

// PayRunWorker periodically pays every non-idle online session from the
// world account. The world account is always transfer-eligible, so runs
// never block on or get rejected by the balance check - even when the
// world balance is negative.
type PayRunWorker struct {
	registry *registry.Registry
	ledger   LedgerService
	accounts AccountService

	interval      time.Duration
	idleThreshold time.Duration
	amount        money.Money
}

// NewPayRunWorker creates a new pay run worker
func NewPayRunWorker(reg *registry.Registry, ledger LedgerService, accounts AccountService, interval, idleThreshold time.Duration, amount money.Money) *PayRunWorker {
	return &PayRunWorker{
		registry:      reg,
		ledger:        ledger,
		accounts:      accounts,
		interval:      interval,
		idleThreshold: idleThreshold,
		amount:        amount,
	}
}

// Start begins the pay run worker and returns a stop function.
func (w *PayRunWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	if w.interval <= 0 || w.amount == 0 {
		log.Info("Pay run worker disabled (no interval or zero amount)")
		return func() {}
	}

	go func() {
		log.WithFields(log.Fields{
			"interval": w.interval,
			"amount":   w.amount.String(),
		}).Info("Pay run worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Pay run worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Pay run worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// runOnce pays every eligible session once. Transfers are fired without
// awaiting: many payments share the one hot world account and each is
// independently asynchronous past the eligibility check.
func (w *PayRunWorker) runOnce(ctx context.Context) {
	world := w.accounts.WorldAccount()
	if world == nil {
		log.Warn("Pay run skipped: world account not loaded")
		return
	}

	sessions := w.registry.Snapshot()

	var paid, skippedIdle, skippedUnloaded int
	for _, session := range sessions {
		account := session.Account()
		if account == nil {
			skippedUnloaded++
			continue
		}
		if session.IdleFor() > w.idleThreshold {
			skippedIdle++
			continue
		}

		w.ledger.TransferAndForget(ctx, world, account, w.amount, models.AnnounceToReceiver)
		paid++
	}

	log.WithFields(log.Fields{
		"sessions":         len(sessions),
		"paid":             paid,
		"skipped_idle":     skippedIdle,
		"skipped_unloaded": skippedUnloaded,
		"amount":           w.amount.String(),
	}).Info("Completed pay run")
}
