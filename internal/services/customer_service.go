package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"espetaria/internal/caching"
	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/internal/repositories"
	"espetaria/pkg/database"
)

// CreditItem is one product line of a sale on account.
type CreditItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type CustomerService interface {
	Create(ctx context.Context, customer *models.Customer) error
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	// RecordPayment lowers the customer's owed balance and writes the
	// matching cash inflow atomically.
	RecordPayment(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, description string) (*models.CustomerTransaction, error)
	// RecordCredit registers a sale on account: the amount is computed
	// from current catalog prices, each line is snapshotted with its unit
	// price, and stock is deducted. No cash moves until the customer pays.
	RecordCredit(ctx context.Context, customerID uuid.UUID, items []CreditItem) (*models.CustomerTransaction, error)
	Transactions(ctx context.Context, customerID uuid.UUID) ([]*models.CustomerTransaction, error)
	Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

type customerService struct {
	db           database.DB
	customerRepo repositories.CustomerRepository
	productRepo  repositories.ProductRepository
	cashRepo     repositories.CashRepository
	stockService StockService
	cacheService caching.CacheService
}

func NewCustomerService(db database.DB, customerRepo repositories.CustomerRepository,
	productRepo repositories.ProductRepository, cashRepo repositories.CashRepository,
	stockService StockService, cacheService caching.CacheService) CustomerService {
	return &customerService{
		db:           db,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		cashRepo:     cashRepo,
		stockService: stockService,
		cacheService: cacheService,
	}
}

func (s *customerService) Create(ctx context.Context, customer *models.Customer) error {
	if err := common.ValidateRequiredString(customer.Name, "name"); err != nil {
		return err
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return common.NewStorageError("create customer", err)
	}
	return nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) List(ctx context.Context) ([]*models.Customer, error) {
	return s.customerRepo.List(ctx)
}

func (s *customerService) Update(ctx context.Context, customer *models.Customer) error {
	if err := common.ValidateRequiredString(customer.Name, "name"); err != nil {
		return err
	}
	return s.customerRepo.Update(ctx, customer)
}

func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.customerRepo.Delete(ctx, id)
}

func (s *customerService) RecordPayment(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, description string) (*models.CustomerTransaction, error) {
	if err := common.ValidatePositiveAmount(amount, "amount"); err != nil {
		return nil, err
	}
	if description == "" {
		description = "Pagamento"
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewStorageError("begin customer payment", err)
	}
	defer tx.Rollback(ctx)

	if err := s.customerRepo.ExistsTx(ctx, tx, customerID); err != nil {
		return nil, err
	}

	transaction := &models.CustomerTransaction{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Amount:      amount,
		Description: description,
		Type:        models.CustomerPayment,
	}
	if err := s.customerRepo.InsertTransactionTx(ctx, tx, transaction); err != nil {
		return nil, err
	}

	entry := &models.CashTransaction{
		ID:          uuid.New(),
		Type:        models.CashIn,
		Amount:      amount,
		Category:    models.CashCategoryCustomerPayment,
		Description: description,
	}
	if err := s.cashRepo.InsertTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewStorageError("commit customer payment", err)
	}

	s.afterLedgerChange(ctx, "customer.payment")
	return transaction, nil
}

func (s *customerService) RecordCredit(ctx context.Context, customerID uuid.UUID, items []CreditItem) (*models.CustomerTransaction, error) {
	if len(items) == 0 {
		return nil, common.NewValidationError("items", "at least one item is required")
	}
	for _, item := range items {
		if err := common.ValidatePositiveAmount(item.Quantity, "quantity"); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewStorageError("begin credit sale", err)
	}
	defer tx.Rollback(ctx)

	if err := s.customerRepo.ExistsTx(ctx, tx, customerID); err != nil {
		return nil, err
	}

	total := decimal.Zero
	parts := make([]string, 0, len(items))
	lines := make([]models.StockLine, 0, len(items))
	snapshots := make([]*models.CustomerTransactionItem, 0, len(items))

	for _, item := range items {
		product, err := s.productRepo.GetActiveTx(ctx, tx, item.ProductID)
		if err != nil {
			return nil, err
		}
		total = total.Add(product.Price.Mul(item.Quantity))
		parts = append(parts, fmt.Sprintf("%s x %s", product.Name, item.Quantity.String()))
		lines = append(lines, models.StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
		snapshots = append(snapshots, &models.CustomerTransactionItem{
			ID:        uuid.New(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
	}

	transaction := &models.CustomerTransaction{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Amount:      total,
		Description: strings.Join(parts, ", "),
		Type:        models.CustomerCredit,
	}
	if err := s.customerRepo.InsertTransactionTx(ctx, tx, transaction); err != nil {
		return nil, err
	}

	for _, snapshot := range snapshots {
		snapshot.CustomerTransactionID = transaction.ID
		if err := s.customerRepo.InsertTransactionItemTx(ctx, tx, snapshot); err != nil {
			return nil, err
		}
	}
	transaction.Items = snapshots

	// A credit sale consumes stock now; the cash arrives only when the
	// customer pays the balance down.
	if _, err := s.stockService.DeductTx(ctx, tx, lines,
		fmt.Sprintf("Baixa automática via fiado %s", transaction.ID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewStorageError("commit credit sale", err)
	}

	s.afterLedgerChange(ctx, "customer.credit")
	return transaction, nil
}

func (s *customerService) Transactions(ctx context.Context, customerID uuid.UUID) ([]*models.CustomerTransaction, error) {
	return s.customerRepo.Transactions(ctx, customerID)
}

func (s *customerService) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	if err := s.customerRepo.ExistsTx(ctx, s.db, customerID); err != nil {
		return decimal.Zero, err
	}
	return s.customerRepo.Balance(ctx, customerID)
}

func (s *customerService) afterLedgerChange(ctx context.Context, event string) {
	if err := s.cacheService.InvalidateAggregates(ctx); err != nil {
		zap.L().Warn("failed to invalidate cached aggregates", zap.Error(err))
	}
	if err := s.cacheService.PublishChange(ctx, event); err != nil {
		zap.L().Warn("failed to publish change event", zap.Error(err))
	}
}
