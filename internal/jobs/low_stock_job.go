package jobs

import (
	"context"

	"go.uber.org/zap"

	"espetaria/internal/repositories"
)

// LowStockJob periodically sweeps the inventory for items at or below
// their alert threshold and logs each one, skipping items whose alerts
// were muted.
type LowStockJob struct {
	inventoryRepo repositories.InventoryRepository
}

func NewLowStockJob(inventoryRepo repositories.InventoryRepository) *LowStockJob {
	return &LowStockJob{inventoryRepo: inventoryRepo}
}

func (j *LowStockJob) Run(ctx context.Context) {
	items, err := j.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		zap.L().Error("low stock sweep failed", zap.Error(err))
		return
	}

	for _, item := range items {
		zap.L().Warn("low stock alert",
			zap.String("item_id", item.ID.String()),
			zap.String("name", item.DisplayName),
			zap.String("quantity", item.Quantity.String()),
			zap.String("min_quantity", item.MinQuantity.String()),
			zap.String("unit", item.Unit))
	}

	if len(items) > 0 {
		zap.L().Info("low stock sweep finished", zap.Int("alerts", len(items)))
	}
}
