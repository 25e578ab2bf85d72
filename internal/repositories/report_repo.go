package repositories

import (
	"context"
	"fmt"

	"espetaria/internal/models"
	"espetaria/pkg/database"
)

type ReportRepository interface {
	Summary(ctx context.Context, filter *models.ReportFilter) (*models.ReportSummary, error)
	ProductBreakdown(ctx context.Context, filter *models.ReportFilter) ([]models.ProductSales, error)
	Consolidated(ctx context.Context, filter *models.ReportFilter) (*models.ConsolidatedReport, error)
}

type reportRepo struct {
	db database.DB
}

func NewReportRepo(db database.DB) ReportRepository {
	return &reportRepo{db: db}
}

// buildOrderFilter assembles the shared WHERE clause over closed orders.
// Open orders are never revenue-bearing.
func buildOrderFilter(filter *models.ReportFilter) (string, []any) {
	where := `
		o.status = 'closed'
		AND o.closed_at BETWEEN $1 AND $2
	`
	args := []any{filter.StartDate, filter.EndDate}

	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(` AND p.category = $%d`, len(args))
	}

	switch filter.PriceRange {
	case "0-15":
		where += ` AND p.price <= 15`
	case "15-30":
		where += ` AND p.price > 15 AND p.price <= 30`
	case "30+":
		where += ` AND p.price > 30`
	}

	return where, args
}

func (r *reportRepo) Summary(ctx context.Context, filter *models.ReportFilter) (*models.ReportSummary, error) {
	where, args := buildOrderFilter(filter)

	summary := &models.ReportSummary{}
	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT o.id),
		       COALESCE(SUM(oi.quantity * p.price), 0),
		       COALESCE(SUM(oi.quantity), 0)
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE %s
	`, where)
	if err := r.db.QueryRow(ctx, query, args...).Scan(&summary.TotalOrders, &summary.TotalRevenue, &summary.ItemsSold); err != nil {
		return nil, err
	}

	orderBy := "revenue DESC"
	switch filter.SortBy {
	case "quantidade":
		orderBy = "quantity DESC"
	case "preco":
		orderBy = "MAX(p.price) DESC"
	}

	topQuery := fmt.Sprintf(`
		SELECT p.name,
		       SUM(oi.quantity) AS quantity,
		       SUM(oi.quantity * p.price) AS revenue
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		JOIN orders o ON o.id = oi.order_id
		WHERE %s
		GROUP BY p.id
		ORDER BY %s
		LIMIT 5
	`, where, orderBy)
	rows, err := r.db.Query(ctx, topQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ps models.ProductSales
		if err := rows.Scan(&ps.Name, &ps.Quantity, &ps.Revenue); err != nil {
			return nil, err
		}
		summary.TopProducts = append(summary.TopProducts, ps)
	}
	return summary, rows.Err()
}

func (r *reportRepo) ProductBreakdown(ctx context.Context, filter *models.ReportFilter) ([]models.ProductSales, error) {
	where, args := buildOrderFilter(filter)

	orderBy := "quantity DESC"
	switch filter.SortBy {
	case "receita":
		orderBy = "revenue DESC"
	case "preco":
		orderBy = "MAX(p.price) DESC"
	}

	query := fmt.Sprintf(`
		SELECT p.name,
		       SUM(oi.quantity) AS quantity,
		       SUM(oi.quantity * p.price) AS revenue
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		JOIN orders o ON o.id = oi.order_id
		WHERE %s
		GROUP BY p.id
		ORDER BY %s
	`, where, orderBy)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.ProductSales
	for rows.Next() {
		var ps models.ProductSales
		if err := rows.Scan(&ps.Name, &ps.Quantity, &ps.Revenue); err != nil {
			return nil, err
		}
		products = append(products, ps)
	}
	return products, rows.Err()
}

func (r *reportRepo) Consolidated(ctx context.Context, filter *models.ReportFilter) (*models.ConsolidatedReport, error) {
	report := &models.ConsolidatedReport{}

	orderQuery := `
		SELECT COUNT(DISTINCT o.id),
		       COALESCE(SUM(oi.quantity * p.price), 0)
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE o.status = 'closed'
		  AND o.closed_at BETWEEN $1 AND $2
	`
	if err := r.db.QueryRow(ctx, orderQuery, filter.StartDate, filter.EndDate).Scan(&report.TotalOrders, &report.OrderRevenue); err != nil {
		return nil, err
	}

	creditQuery := `
		SELECT COUNT(id),
		       COALESCE(SUM(amount), 0)
		FROM customer_transactions
		WHERE type = 'credit'
		  AND created_at BETWEEN $1 AND $2
	`
	if err := r.db.QueryRow(ctx, creditQuery, filter.StartDate, filter.EndDate).Scan(&report.CreditTransactions, &report.CreditRevenue); err != nil {
		return nil, err
	}

	report.TotalRevenue = report.OrderRevenue.Add(report.CreditRevenue)
	return report, nil
}
