package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"espetaria/internal/models"
	"espetaria/internal/repositories"
	"espetaria/pkg/database"
)

// StockService is the deduction engine shared by order settlement and
// credit sales. It always runs inside a caller-owned transaction so the
// deductions commit or roll back together with the business event that
// triggered them.
type StockService interface {
	// DeductTx removes stock for each line, clamping to the available
	// quantity. Products without a stock record are skipped. The returned
	// slice reports what was actually deducted per touched item.
	DeductTx(ctx context.Context, q database.Querier, lines []models.StockLine, description string) ([]models.Deduction, error)
}

type stockService struct {
	inventoryRepo repositories.InventoryRepository
}

func NewStockService(inventoryRepo repositories.InventoryRepository) StockService {
	return &stockService{inventoryRepo: inventoryRepo}
}

func (s *stockService) DeductTx(ctx context.Context, q database.Querier, lines []models.StockLine, description string) ([]models.Deduction, error) {
	deductions := make([]models.Deduction, 0, len(lines))
	log := zap.L()

	for _, line := range lines {
		item, err := s.inventoryRepo.GetByProductTx(ctx, q, line.ProductID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			// Not every product tracks stock; lines without a record are
			// intentionally ignored.
			log.Debug("no stock record for product, skipping deduction",
				zap.String("product_id", line.ProductID.String()))
			continue
		}

		deducted := line.Quantity
		if item.Quantity.LessThan(deducted) {
			log.Warn("insufficient stock, clamping deduction",
				zap.String("item", item.DisplayName),
				zap.String("requested", line.Quantity.String()),
				zap.String("available", item.Quantity.String()))
			deducted = item.Quantity
		}

		if err := s.inventoryRepo.UpdateQuantityTx(ctx, q, item.ID, item.Quantity.Sub(deducted)); err != nil {
			return nil, err
		}

		movement := &models.InventoryTransaction{
			ID:              uuid.New(),
			InventoryItemID: item.ID,
			Quantity:        deducted,
			Type:            models.MovementOut,
			Description:     description,
		}
		if err := s.inventoryRepo.InsertMovementTx(ctx, q, movement); err != nil {
			return nil, err
		}

		deductions = append(deductions, models.Deduction{
			InventoryItemID: item.ID,
			Deducted:        deducted,
		})
	}
	return deductions, nil
}
