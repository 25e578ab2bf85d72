package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"espetaria/internal/caching"
	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/internal/repositories"
)

const cashFlowTTL = 5 * time.Minute

type CashService interface {
	// Add records a manual ledger entry. Entries are immutable: mistakes
	// are corrected with a compensating entry, never edited.
	Add(ctx context.Context, transactionType string, amount decimal.Decimal, category, description string) (*models.CashTransaction, error)
	Flow(ctx context.Context) (*models.CashFlow, error)
	List(ctx context.Context, limit, offset int) ([]*models.CashTransaction, error)
}

type cashService struct {
	cashRepo     repositories.CashRepository
	cacheService caching.CacheService
}

func NewCashService(cashRepo repositories.CashRepository, cacheService caching.CacheService) CashService {
	return &cashService{cashRepo: cashRepo, cacheService: cacheService}
}

func (s *cashService) Add(ctx context.Context, transactionType string, amount decimal.Decimal, category, description string) (*models.CashTransaction, error) {
	parsed, err := models.ParseCashTransactionType(transactionType)
	if err != nil {
		return nil, common.NewValidationError("type", err.Error())
	}
	if err := common.ValidatePositiveAmount(amount, "amount"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(category, "category"); err != nil {
		return nil, err
	}

	transaction := &models.CashTransaction{
		ID:          uuid.New(),
		Type:        parsed,
		Amount:      amount,
		Category:    category,
		Description: description,
	}
	if err := s.cashRepo.Insert(ctx, transaction); err != nil {
		return nil, common.NewStorageError("insert cash transaction", err)
	}

	if err := s.cacheService.InvalidateAggregates(ctx); err != nil {
		zap.L().Warn("failed to invalidate cached aggregates", zap.Error(err))
	}
	return transaction, nil
}

func (s *cashService) Flow(ctx context.Context) (*models.CashFlow, error) {
	if cached, err := s.cacheService.GetCashFlow(ctx); err == nil && cached != nil {
		return cached, nil
	}

	flow, err := s.cashRepo.Flow(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetCashFlow(ctx, flow, cashFlowTTL); err != nil {
		zap.L().Warn("failed to cache cash flow", zap.Error(err))
	}
	return flow, nil
}

func (s *cashService) List(ctx context.Context, limit, offset int) ([]*models.CashTransaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.cashRepo.List(ctx, limit, offset)
}
