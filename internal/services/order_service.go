package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"espetaria/internal/caching"
	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/internal/repositories"
	"espetaria/pkg/database"
)

type OrderService interface {
	Create(ctx context.Context, tableNumber int, customerName *string) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOpen(ctx context.Context) ([]*models.Order, error)
	// AddItem merges into an existing line for the same product instead of
	// creating a duplicate line.
	AddItem(ctx context.Context, orderID, productID uuid.UUID, quantity decimal.Decimal) error
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	// PayPartial marks quantities as paid ahead of settlement. Paid
	// quantities never exceed ordered quantities and never touch stock or
	// cash.
	PayPartial(ctx context.Context, orderID uuid.UUID, payments []models.PartialPayment) error
	// Close settles the order atomically: status flip, cash ledger entry
	// and inventory deduction commit together or not at all.
	Close(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type orderService struct {
	db           database.DB
	orderRepo    repositories.OrderRepository
	productRepo  repositories.ProductRepository
	cashRepo     repositories.CashRepository
	stockService StockService
	cacheService caching.CacheService
}

func NewOrderService(db database.DB, orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository,
	cashRepo repositories.CashRepository, stockService StockService, cacheService caching.CacheService) OrderService {
	return &orderService{
		db:           db,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		cashRepo:     cashRepo,
		stockService: stockService,
		cacheService: cacheService,
	}
}

func (s *orderService) Create(ctx context.Context, tableNumber int, customerName *string) (*models.Order, error) {
	if tableNumber <= 0 {
		return nil, common.NewValidationError("table_number", "table number must be positive")
	}

	order := &models.Order{
		ID:           uuid.New(),
		TableNumber:  tableNumber,
		CustomerName: customerName,
		Status:       models.OrderOpen,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, common.NewStorageError("create order", err)
	}
	return order, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

func (s *orderService) ListOpen(ctx context.Context) ([]*models.Order, error) {
	return s.orderRepo.ListOpen(ctx)
}

func (s *orderService) AddItem(ctx context.Context, orderID, productID uuid.UUID, quantity decimal.Decimal) error {
	if err := common.ValidatePositiveAmount(quantity, "quantity"); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return common.NewStorageError("begin add item", err)
	}
	defer tx.Rollback(ctx)

	status, err := s.orderRepo.GetStatusForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if status != models.OrderOpen {
		return common.NewInvalidStateError("order %s is closed and cannot be modified", orderID)
	}

	if _, err := s.productRepo.GetActiveTx(ctx, tx, productID); err != nil {
		return err
	}

	existing, err := s.orderRepo.FindItemTx(ctx, tx, orderID, productID)
	if err != nil {
		return err
	}
	if existing != nil {
		if err := s.orderRepo.AddItemQuantityTx(ctx, tx, existing.ID, quantity); err != nil {
			return err
		}
	} else {
		item := &models.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.orderRepo.InsertItemTx(ctx, tx, item); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *orderService) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	return s.orderRepo.DeleteItem(ctx, itemID)
}

func (s *orderService) PayPartial(ctx context.Context, orderID uuid.UUID, payments []models.PartialPayment) error {
	if len(payments) == 0 {
		return common.NewValidationError("payments", "at least one payment line is required")
	}
	for _, p := range payments {
		if err := common.ValidatePositiveAmount(p.Quantity, "quantity"); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return common.NewStorageError("begin partial payment", err)
	}
	defer tx.Rollback(ctx)

	status, err := s.orderRepo.GetStatusForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if status != models.OrderOpen {
		return common.NewInvalidStateError("order %s is closed and cannot be modified", orderID)
	}

	for _, p := range payments {
		if err := s.orderRepo.PayItemTx(ctx, tx, orderID, p.OrderItemID, p.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *orderService) Close(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewStorageError("begin settlement", err)
	}
	defer tx.Rollback(ctx)

	status, err := s.orderRepo.GetStatusForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if status == models.OrderClosed {
		return nil, common.NewInvalidStateError("order %s is already closed", orderID)
	}

	closedAt := time.Now()
	if err := s.orderRepo.CloseTx(ctx, tx, orderID, closedAt); err != nil {
		return nil, err
	}

	total, err := s.orderRepo.TotalTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	entry := &models.CashTransaction{
		ID:          uuid.New(),
		Type:        models.CashIn,
		Amount:      total,
		Category:    models.CashCategorySale,
		Description: fmt.Sprintf("Venda automática via pedido %s", orderID),
	}
	if err := s.cashRepo.InsertTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	lines, err := s.orderRepo.StockLinesTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.stockService.DeductTx(ctx, tx, lines,
		fmt.Sprintf("Baixa automática via pedido %s", orderID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewStorageError("commit settlement", err)
	}

	if err := s.cacheService.InvalidateAggregates(ctx); err != nil {
		zap.L().Warn("failed to invalidate cached aggregates", zap.Error(err))
	}
	if err := s.cacheService.PublishChange(ctx, "order.closed"); err != nil {
		zap.L().Warn("failed to publish change event", zap.Error(err))
	}

	return s.orderRepo.GetByID(ctx, orderID)
}
