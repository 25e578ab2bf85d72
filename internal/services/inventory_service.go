package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/internal/repositories"
	"espetaria/pkg/database"
)

type InventoryService interface {
	// AddManual creates a stock record for goods without a catalog product,
	// such as raw ingredients.
	AddManual(ctx context.Context, name, unit string, quantity, minQuantity decimal.Decimal) (*models.InventoryItem, error)
	List(ctx context.Context) ([]*models.InventoryItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	// Adjust applies a manual stock movement. Outbound adjustments fail
	// when the quantity on hand is insufficient; automatic deductions are
	// the only path allowed to clamp.
	Adjust(ctx context.Context, id uuid.UUID, movementType models.MovementType, quantity decimal.Decimal, description string) error
	UpdateMeta(ctx context.Context, id uuid.UUID, unit string, minQuantity decimal.Decimal) error
	SetAlertDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
	// Delete removes a manual stock record and its movement log.
	// Product-linked records can only be removed by deleting the product.
	Delete(ctx context.Context, id uuid.UUID) error
	Movements(ctx context.Context, itemID uuid.UUID) ([]*models.InventoryTransaction, error)
	LowStock(ctx context.Context) ([]*models.InventoryItem, error)
}

type inventoryService struct {
	db            database.DB
	inventoryRepo repositories.InventoryRepository
}

func NewInventoryService(db database.DB, inventoryRepo repositories.InventoryRepository) InventoryService {
	return &inventoryService{db: db, inventoryRepo: inventoryRepo}
}

func (s *inventoryService) AddManual(ctx context.Context, name, unit string, quantity, minQuantity decimal.Decimal) (*models.InventoryItem, error) {
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateNonNegativeAmount(quantity, "quantity"); err != nil {
		return nil, err
	}
	if err := common.ValidateNonNegativeAmount(minQuantity, "min_quantity"); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = "un"
	}

	item := &models.InventoryItem{
		ID:          uuid.New(),
		ManualName:  &name,
		Quantity:    quantity,
		Unit:        unit,
		MinQuantity: minQuantity,
		DisplayName: name,
	}
	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return nil, common.NewStorageError("create inventory item", err)
	}
	return item, nil
}

func (s *inventoryService) List(ctx context.Context) ([]*models.InventoryItem, error) {
	return s.inventoryRepo.List(ctx)
}

func (s *inventoryService) Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return s.inventoryRepo.GetByID(ctx, id)
}

func (s *inventoryService) Adjust(ctx context.Context, id uuid.UUID, movementType models.MovementType, quantity decimal.Decimal, description string) error {
	if err := common.ValidatePositiveAmount(quantity, "quantity"); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return common.NewStorageError("begin stock adjustment", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.inventoryRepo.GetQuantityForUpdateTx(ctx, tx, id)
	if err != nil {
		return err
	}

	var next decimal.Decimal
	switch movementType {
	case models.MovementIn:
		next = current.Add(quantity)
	case models.MovementOut:
		next = current.Sub(quantity)
		if next.IsNegative() {
			return common.NewValidationError("quantity", "insufficient stock for this movement")
		}
	default:
		return common.NewValidationError("type", "unknown movement type")
	}

	if err := s.inventoryRepo.UpdateQuantityTx(ctx, tx, id, next); err != nil {
		return err
	}

	movement := &models.InventoryTransaction{
		ID:              uuid.New(),
		InventoryItemID: id,
		Quantity:        quantity,
		Type:            movementType,
		Description:     description,
	}
	if err := s.inventoryRepo.InsertMovementTx(ctx, tx, movement); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *inventoryService) UpdateMeta(ctx context.Context, id uuid.UUID, unit string, minQuantity decimal.Decimal) error {
	if err := common.ValidateRequiredString(unit, "unit"); err != nil {
		return err
	}
	if err := common.ValidateNonNegativeAmount(minQuantity, "min_quantity"); err != nil {
		return err
	}
	return s.inventoryRepo.UpdateMeta(ctx, id, unit, minQuantity)
}

func (s *inventoryService) SetAlertDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	return s.inventoryRepo.SetAlertDisabled(ctx, id, disabled)
}

func (s *inventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item.ProductID != nil {
		return common.NewInvalidStateError("inventory item %s is linked to a product; delete the product instead", id)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return common.NewStorageError("begin delete inventory item", err)
	}
	defer tx.Rollback(ctx)

	if err := s.inventoryRepo.DeleteWithMovementsTx(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *inventoryService) Movements(ctx context.Context, itemID uuid.UUID) ([]*models.InventoryTransaction, error) {
	return s.inventoryRepo.Movements(ctx, itemID)
}

func (s *inventoryService) LowStock(ctx context.Context) ([]*models.InventoryItem, error) {
	return s.inventoryRepo.ListLowStock(ctx)
}
