package service

import (
	"context"
	"time"

	"banker/models"
	"banker/money"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByOwnerName(ctx context.Context, ownerName string) (*models.Account, error) {
	args := m.Called(ctx, ownerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, ownerName string, worldID int64, flags models.AccountFlags) (*models.Account, error) {
	args := m.Called(ctx, ownerName, worldID, flags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateFlags(ctx context.Context, accountID int64, flags models.AccountFlags) error {
	args := m.Called(ctx, accountID, flags)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAll(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Insert(ctx context.Context, accountID int64, amount money.Money, flags models.TransactionFlags, linkedID *int64) (int64, error) {
	args := m.Called(ctx, accountID, amount, flags, linkedID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) Link(ctx context.Context, sourceID, destID int64) error {
	args := m.Called(ctx, sourceID, destID)
	return args.Error(0)
}

func (m *MockTransactionRepository) SumForAccount(ctx context.Context, accountID int64) (money.Money, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(money.Money), args.Error(1)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UnlinkedBefore(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}
