package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportFilter selects closed orders for aggregation. Open orders are
// never revenue-bearing and are excluded from every report.
type ReportFilter struct {
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Category   string    `json:"category,omitempty"`
	PriceRange string    `json:"price_range,omitempty"` // "0-15", "15-30", "30+"
	SortBy     string    `json:"sort_by,omitempty"`     // "quantidade", "receita", "preco"
}

type ProductSales struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type ReportSummary struct {
	TotalOrders  int64           `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	ItemsSold    decimal.Decimal `json:"items_sold"`
	TopProducts  []ProductSales  `json:"top_products"`
}

type ProductReport struct {
	Products      []ProductSales `json:"products"`
	TopProduct    *ProductSales  `json:"top_product"`
	BottomProduct *ProductSales  `json:"bottom_product"`
}

// ConsolidatedReport merges order-based revenue with customer credit-sale
// revenue over the same period.
type ConsolidatedReport struct {
	OrderRevenue       decimal.Decimal `json:"order_revenue"`
	CreditRevenue      decimal.Decimal `json:"credit_revenue"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalOrders        int64           `json:"total_orders"`
	CreditTransactions int64           `json:"credit_transactions"`
}
