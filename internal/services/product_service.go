package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/internal/repositories"
	"espetaria/pkg/database"
)

type ProductService interface {
	List(ctx context.Context) ([]*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// Create registers the product and its zero-quantity stock record in
	// one transaction.
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	// Delete soft-deletes the product so historical sales keep resolving,
	// and hard-deletes its stock record together with the movement log.
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	db            database.DB
	productRepo   repositories.ProductRepository
	inventoryRepo repositories.InventoryRepository
}

func NewProductService(db database.DB, productRepo repositories.ProductRepository,
	inventoryRepo repositories.InventoryRepository) ProductService {
	return &productService{db: db, productRepo: productRepo, inventoryRepo: inventoryRepo}
}

func (s *productService) List(ctx context.Context) ([]*models.Product, error) {
	return s.productRepo.List(ctx)
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) Create(ctx context.Context, product *models.Product) error {
	if err := common.ValidateRequiredString(product.Name, "name"); err != nil {
		return err
	}
	if err := common.ValidateNonNegativeAmount(product.Price, "price"); err != nil {
		return err
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return common.NewStorageError("begin create product", err)
	}
	defer tx.Rollback(ctx)

	if err := s.productRepo.CreateTx(ctx, tx, product); err != nil {
		return err
	}

	item := &models.InventoryItem{
		ID:        uuid.New(),
		ProductID: &product.ID,
		Unit:      "un",
	}
	if err := s.inventoryRepo.CreateTx(ctx, tx, item); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *productService) Update(ctx context.Context, product *models.Product) error {
	if err := common.ValidateRequiredString(product.Name, "name"); err != nil {
		return err
	}
	if err := common.ValidateNonNegativeAmount(product.Price, "price"); err != nil {
		return err
	}
	return s.productRepo.Update(ctx, product)
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return common.NewStorageError("begin delete product", err)
	}
	defer tx.Rollback(ctx)

	if err := s.productRepo.SoftDeleteTx(ctx, tx, id); err != nil {
		return err
	}
	if err := s.inventoryRepo.DeleteByProductTx(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return common.NewStorageError("commit delete product", err)
	}

	zap.L().Info("product deleted", zap.String("product_id", id.String()))
	return nil
}
