package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/pkg/database"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// ListOpen returns open orders with their line items and running total.
	ListOpen(ctx context.Context) ([]*models.Order, error)
	// GetStatusForUpdateTx locks the order row for the settlement
	// transaction.
	GetStatusForUpdateTx(ctx context.Context, q database.Querier, id uuid.UUID) (models.OrderStatus, error)
	CloseTx(ctx context.Context, q database.Querier, id uuid.UUID, closedAt time.Time) error
	// TotalTx sums quantity * price over the order's items at current
	// catalog prices.
	TotalTx(ctx context.Context, q database.Querier, orderID uuid.UUID) (decimal.Decimal, error)
	// StockLinesTx returns the order's (product, summed quantity) pairs for
	// inventory deduction.
	StockLinesTx(ctx context.Context, q database.Querier, orderID uuid.UUID) ([]models.StockLine, error)
	FindItemTx(ctx context.Context, q database.Querier, orderID, productID uuid.UUID) (*models.OrderItem, error)
	InsertItemTx(ctx context.Context, q database.Querier, item *models.OrderItem) error
	AddItemQuantityTx(ctx context.Context, q database.Querier, itemID uuid.UUID, delta decimal.Decimal) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	// PayItemTx raises paid_quantity by delta, clamped to the ordered
	// quantity.
	PayItemTx(ctx context.Context, q database.Querier, orderID, itemID uuid.UUID, delta decimal.Decimal) error
	Items(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error)
}

type orderRepo struct {
	db database.DB
}

func NewOrderRepo(db database.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, table_number, customer_name, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, order.ID, order.TableNumber, order.CustomerName, order.Status)
	return err
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT id, table_number, customer_name, status, created_at, closed_at
		FROM orders
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&order.ID, &order.TableNumber, &order.CustomerName,
		&order.Status, &order.CreatedAt, &order.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("order", id.String())
	}
	if err != nil {
		return nil, err
	}

	order.Items, err = r.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, item := range order.Items {
		order.Total = order.Total.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return order, nil
}

func (r *orderRepo) ListOpen(ctx context.Context) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.table_number, o.customer_name, o.status, o.created_at, o.closed_at,
		       COALESCE(SUM(oi.quantity * p.price), 0) AS total
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE o.status = 'open'
		GROUP BY o.id
		ORDER BY o.created_at
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.TableNumber, &order.CustomerName, &order.Status,
			&order.CreatedAt, &order.ClosedAt, &order.Total); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		order.Items, err = r.Items(ctx, order.ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepo) GetStatusForUpdateTx(ctx context.Context, q database.Querier, id uuid.UUID) (models.OrderStatus, error) {
	var status models.OrderStatus
	err := q.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", common.NewNotFoundError("order", id.String())
	}
	return status, err
}

func (r *orderRepo) CloseTx(ctx context.Context, q database.Querier, id uuid.UUID, closedAt time.Time) error {
	_, err := q.Exec(ctx, `UPDATE orders SET status = 'closed', closed_at = $1 WHERE id = $2`, closedAt, id)
	return err
}

func (r *orderRepo) TotalTx(ctx context.Context, q database.Querier, orderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `
		SELECT COALESCE(SUM(oi.quantity * p.price), 0)
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
	`
	err := q.QueryRow(ctx, query, orderID).Scan(&total)
	return total, err
}

func (r *orderRepo) StockLinesTx(ctx context.Context, q database.Querier, orderID uuid.UUID) ([]models.StockLine, error) {
	query := `
		SELECT product_id, SUM(quantity)
		FROM order_items
		WHERE order_id = $1
		GROUP BY product_id
	`
	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.StockLine
	for rows.Next() {
		var line models.StockLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *orderRepo) FindItemTx(ctx context.Context, q database.Querier, orderID, productID uuid.UUID) (*models.OrderItem, error) {
	item := &models.OrderItem{}
	query := `
		SELECT id, order_id, product_id, quantity, paid_quantity, created_at
		FROM order_items
		WHERE order_id = $1 AND product_id = $2
	`
	err := q.QueryRow(ctx, query, orderID, productID).Scan(&item.ID, &item.OrderID, &item.ProductID,
		&item.Quantity, &item.PaidQuantity, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *orderRepo) InsertItemTx(ctx context.Context, q database.Querier, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := q.Exec(ctx, query, item.ID, item.OrderID, item.ProductID, item.Quantity)
	return err
}

func (r *orderRepo) AddItemQuantityTx(ctx context.Context, q database.Querier, itemID uuid.UUID, delta decimal.Decimal) error {
	_, err := q.Exec(ctx, `UPDATE order_items SET quantity = quantity + $1 WHERE id = $2`, delta, itemID)
	return err
}

func (r *orderRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("order item", itemID.String())
	}
	return nil
}

func (r *orderRepo) PayItemTx(ctx context.Context, q database.Querier, orderID, itemID uuid.UUID, delta decimal.Decimal) error {
	// LEAST keeps paid_quantity within the ordered quantity.
	query := `
		UPDATE order_items
		SET paid_quantity = LEAST(quantity, paid_quantity + $1)
		WHERE id = $2 AND order_id = $3
	`
	tag, err := q.Exec(ctx, query, delta, itemID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("order item", itemID.String())
	}
	return nil
}

func (r *orderRepo) Items(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.paid_quantity, oi.created_at,
		       p.name, p.price
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PaidQuantity,
			&item.CreatedAt, &item.ProductName, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
