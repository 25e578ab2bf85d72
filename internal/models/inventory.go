package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies an inventory movement. Stored with a single
// canonical spelling; legacy keywords from older clients are accepted only
// at the request boundary via ParseMovementType.
type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// ParseMovementType maps a wire value to a canonical MovementType. The
// legacy spellings "entrada" and "add" mean in, "saida" means out.
func ParseMovementType(s string) (MovementType, error) {
	switch s {
	case "in", "entrada", "add":
		return MovementIn, nil
	case "out", "saida":
		return MovementOut, nil
	}
	return "", fmt.Errorf("unknown movement type %q", s)
}

// InventoryItem is a stock record. Exactly one of ProductID and ManualName
// is set: product-linked items are created automatically with their
// product, manual items track unlinked goods such as raw ingredients.
type InventoryItem struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ProductID     *uuid.UUID      `json:"product_id" db:"product_id"`
	ManualName    *string         `json:"manual_name" db:"manual_name"`
	Quantity      decimal.Decimal `json:"quantity" db:"quantity"`
	Unit          string          `json:"unit" db:"unit"`
	MinQuantity   decimal.Decimal `json:"min_quantity" db:"min_quantity"`
	AlertDisabled bool            `json:"alert_disabled" db:"alert_disabled"`

	// DisplayName is the product name for linked items, ManualName otherwise.
	DisplayName string `json:"name"`
}

// LowStock reports whether the item is at or below its alert threshold.
func (i *InventoryItem) LowStock() bool {
	return !i.AlertDisabled && i.Quantity.LessThanOrEqual(i.MinQuantity)
}

// InventoryTransaction is an immutable movement log entry. Quantity is
// always a positive magnitude; Type carries the direction.
type InventoryTransaction struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	InventoryItemID uuid.UUID       `json:"inventory_item_id" db:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity" db:"quantity"`
	Type            MovementType    `json:"type" db:"type"`
	Description     string          `json:"description" db:"description"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// StockLine is one (product, quantity) pair submitted to the deduction
// engine.
type StockLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// Deduction reports what the deduction engine actually removed for one
// line. Deducted may be less than requested when stock ran short.
type Deduction struct {
	InventoryItemID uuid.UUID
	Deducted        decimal.Decimal
}
