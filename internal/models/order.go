package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the order lifecycle state. An order is created open and
// transitions to closed exactly once, at settlement.
type OrderStatus string

const (
	OrderOpen   OrderStatus = "open"
	OrderClosed OrderStatus = "closed"
)

type Order struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	TableNumber  int             `json:"table_number" db:"table_number"`
	CustomerName *string         `json:"customer_name" db:"customer_name"`
	Status       OrderStatus     `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	ClosedAt     *time.Time      `json:"closed_at" db:"closed_at"`
	Total        decimal.Decimal `json:"total"`
	Items        []*OrderItem    `json:"items,omitempty"`
}

type OrderItem struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrderID      uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID    uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity     decimal.Decimal `json:"quantity" db:"quantity"`
	PaidQuantity decimal.Decimal `json:"paid_quantity" db:"paid_quantity"`
	ProductName  string          `json:"product_name"`
	UnitPrice    decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// PartialPayment marks part of an order item as paid before the order is
// closed. Informational only: it never touches stock or cash.
type PartialPayment struct {
	OrderItemID uuid.UUID       `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}
