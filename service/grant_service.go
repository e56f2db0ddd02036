package service

import (
	"context"

	"banker/models"
	"banker/money"
)

type grantService struct {
	accounts AccountService
	ledger   LedgerService
}

// NewGrantService creates a new grant service
func NewGrantService(accounts AccountService, ledger LedgerService) GrantService {
	return &grantService{
		accounts: accounts,
		ledger:   ledger,
	}
}

func (s *grantService) Give(ctx context.Context, to *models.Account, amount money.Money) *models.TransferResult {
	world := s.accounts.WorldAccount()
	if world == nil {
		return &models.TransferResult{
			Amount:  amount,
			To:      to,
			Options: models.AnnounceToReceiver,
			Err:     models.ErrNotFound,
		}
	}
	return s.ledger.Transfer(ctx, world, to, amount, models.AnnounceToReceiver)
}

func (s *grantService) Take(ctx context.Context, to *models.Account, amount money.Money) *models.TransferResult {
	// Negate positive amounts so the world-to-player transfer pulls money
	// back. Only positive amounts flip: negating an already-negative "take"
	// would turn it into a gift.
	if amount > 0 {
		amount = amount.Neg()
	}
	return s.Give(ctx, to, amount)
}
