package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"banker/config"
	"banker/database"
	"banker/events"
	"banker/models"
	"banker/registry"
	"banker/repository"
	"banker/service"

	logrus "github.com/sirupsen/logrus"
)

// Services bundles the public seams of the running application. The
// embedding command layer (chat commands, admin tooling) drives the system
// exclusively through these.
type Services struct {
	Ledger   service.LedgerService
	Accounts service.AccountService
	Grants   service.GrantService
	Registry *registry.Registry
	Bus      *events.Bus
}

// newServices wires the service graph over a database connection.
func newServices(db *database.DB, bus *events.Bus, cfg *config.Config) *Services {
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	ledgerService := service.NewLedgerService(transactionRepo, bus)
	accountService := service.NewAccountService(
		accountRepo,
		ledgerService,
		bus,
		cfg.WorldID,
		cfg.StartingMoney,
		cfg.AccountsEnabledDefault,
	)

	return &Services{
		Ledger:   ledgerService,
		Accounts: accountService,
		Grants:   service.NewGrantService(accountService, ledgerService),
		Registry: registry.New(accountService, bus),
		Bus:      bus,
	}
}

// Run initializes and starts the application. Once the service graph is
// wired, onReady is invoked with it so the command layer can attach before
// the first pay run.
func Run(ctx context.Context, onReady func(*Services)) error {
	log.Println("Starting banker...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	subscribeAnnouncements(eventBus)

	services := newServices(db, eventBus, cfg)

	// The world account must exist before anything can pay out of it.
	log.Println("Ensuring world account exists...")
	if _, err := services.Accounts.EnsureWorldAccount(ctx); err != nil {
		return fmt.Errorf("failed to ensure world account: %w", err)
	}

	if onReady != nil {
		onReady(services)
	}

	// Start the periodic disbursement worker
	payRun := service.NewPayRunWorker(
		services.Registry,
		services.Ledger,
		services.Accounts,
		time.Duration(cfg.PayIntervalMinutes)*time.Minute,
		time.Duration(cfg.IdleThresholdMinutes)*time.Minute,
		cfg.PayAmount,
	)
	stopPayRun := payRun.Start(ctx)

	// Wait for context cancellation
	log.Printf("Banker is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")
	stopPayRun()

	// Give in-flight transfers time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}

// subscribeAnnouncements wires the default messaging subscribers. Any
// richer announcement layer (pvp messages, p2p receipts) registers its own
// handlers on the same events and sets SuppressDefaultAnnouncements on its
// transfers.
func subscribeAnnouncements(bus *events.Bus) {
	bus.Subscribe(events.EventTypeTransferCompleted, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.TransferCompletedEvent)
		if !ok || e.Result == nil {
			return
		}
		result := e.Result
		if result.Options.Has(models.SuppressDefaultAnnouncements) {
			return
		}

		fields := logrus.Fields{
			"amount":  result.Amount.LongString(true),
			"options": result.Options,
		}
		if result.From != nil {
			fields["from"] = result.From.OwnerName
		}
		if result.To != nil {
			fields["to"] = result.To.OwnerName
		}

		if result.Succeeded {
			logrus.WithFields(fields).Info("Transfer completed")
		} else {
			fields["error"] = result.Err
			logrus.WithFields(fields).Warn("Transfer failed")
		}
	})

	bus.Subscribe(events.EventTypeAccountFlagsChanged, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.AccountFlagsChangedEvent); ok {
			logrus.WithFields(logrus.Fields{
				"accountID": e.AccountID,
				"actorID":   e.ActorID,
				"newFlags":  e.NewFlags,
			}).Info("Account flags changed")
		}
	})

	bus.Subscribe(events.EventTypeAccountLoaded, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.AccountLoadedEvent); ok {
			logrus.WithFields(logrus.Fields{
				"owner":     e.OwnerName,
				"accountID": e.AccountID,
			}).Info("Account loaded")
		}
	})
}
