package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/pkg/database"
)

type InventoryRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	CreateTx(ctx context.Context, q database.Querier, item *models.InventoryItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	// GetByProductTx returns (nil, nil) when the product has no stock
	// record: settlement deliberately skips such lines.
	GetByProductTx(ctx context.Context, q database.Querier, productID uuid.UUID) (*models.InventoryItem, error)
	// GetQuantityForUpdateTx locks the stock row for a manual adjustment.
	GetQuantityForUpdateTx(ctx context.Context, q database.Querier, id uuid.UUID) (decimal.Decimal, error)
	List(ctx context.Context) ([]*models.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]*models.InventoryItem, error)
	UpdateQuantityTx(ctx context.Context, q database.Querier, id uuid.UUID, quantity decimal.Decimal) error
	InsertMovementTx(ctx context.Context, q database.Querier, movement *models.InventoryTransaction) error
	UpdateMeta(ctx context.Context, id uuid.UUID, unit string, minQuantity decimal.Decimal) error
	SetAlertDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
	DeleteWithMovementsTx(ctx context.Context, q database.Querier, id uuid.UUID) error
	DeleteByProductTx(ctx context.Context, q database.Querier, productID uuid.UUID) error
	Movements(ctx context.Context, itemID uuid.UUID) ([]*models.InventoryTransaction, error)
}

type inventoryRepo struct {
	db database.DB
}

func NewInventoryRepo(db database.DB) InventoryRepository {
	return &inventoryRepo{db: db}
}

const inventorySelect = `
	SELECT ii.id, ii.product_id, ii.manual_name, ii.quantity, ii.unit, ii.min_quantity, ii.alert_disabled,
	       COALESCE(p.name, ii.manual_name, '') AS display_name
	FROM inventory_items ii
	LEFT JOIN products p ON ii.product_id = p.id
`

func scanInventoryItem(row pgx.Row) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	err := row.Scan(&item.ID, &item.ProductID, &item.ManualName, &item.Quantity, &item.Unit,
		&item.MinQuantity, &item.AlertDisabled, &item.DisplayName)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *inventoryRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.CreateTx(ctx, r.db, item)
}

func (r *inventoryRepo) CreateTx(ctx context.Context, q database.Querier, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, product_id, manual_name, quantity, unit, min_quantity, alert_disabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.Exec(ctx, query, item.ID, item.ProductID, item.ManualName, item.Quantity,
		item.Unit, item.MinQuantity, item.AlertDisabled)
	return err
}

func (r *inventoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := scanInventoryItem(r.db.QueryRow(ctx, inventorySelect+` WHERE ii.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("inventory item", id.String())
	}
	return item, err
}

func (r *inventoryRepo) GetByProductTx(ctx context.Context, q database.Querier, productID uuid.UUID) (*models.InventoryItem, error) {
	item, err := scanInventoryItem(q.QueryRow(ctx, inventorySelect+` WHERE ii.product_id = $1 FOR UPDATE OF ii`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

func (r *inventoryRepo) GetQuantityForUpdateTx(ctx context.Context, q database.Querier, id uuid.UUID) (decimal.Decimal, error) {
	var quantity decimal.Decimal
	err := q.QueryRow(ctx, `SELECT quantity FROM inventory_items WHERE id = $1 FOR UPDATE`, id).Scan(&quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, common.NewNotFoundError("inventory item", id.String())
	}
	return quantity, err
}

func (r *inventoryRepo) List(ctx context.Context) ([]*models.InventoryItem, error) {
	return r.queryItems(ctx, inventorySelect+` ORDER BY display_name`)
}

func (r *inventoryRepo) ListLowStock(ctx context.Context) ([]*models.InventoryItem, error) {
	return r.queryItems(ctx, inventorySelect+`
		WHERE ii.quantity <= ii.min_quantity AND ii.alert_disabled = FALSE
		ORDER BY display_name`)
}

func (r *inventoryRepo) queryItems(ctx context.Context, query string, args ...any) ([]*models.InventoryItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *inventoryRepo) UpdateQuantityTx(ctx context.Context, q database.Querier, id uuid.UUID, quantity decimal.Decimal) error {
	_, err := q.Exec(ctx, `UPDATE inventory_items SET quantity = $1 WHERE id = $2`, quantity, id)
	return err
}

func (r *inventoryRepo) InsertMovementTx(ctx context.Context, q database.Querier, movement *models.InventoryTransaction) error {
	query := `
		INSERT INTO inventory_transactions (id, inventory_item_id, quantity, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := q.Exec(ctx, query, movement.ID, movement.InventoryItemID, movement.Quantity,
		movement.Type, movement.Description)
	return err
}

func (r *inventoryRepo) UpdateMeta(ctx context.Context, id uuid.UUID, unit string, minQuantity decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `UPDATE inventory_items SET unit = $1, min_quantity = $2 WHERE id = $3`, unit, minQuantity, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("inventory item", id.String())
	}
	return nil
}

func (r *inventoryRepo) SetAlertDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE inventory_items SET alert_disabled = $1 WHERE id = $2`, disabled, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("inventory item", id.String())
	}
	return nil
}

func (r *inventoryRepo) DeleteWithMovementsTx(ctx context.Context, q database.Querier, id uuid.UUID) error {
	if _, err := q.Exec(ctx, `DELETE FROM inventory_transactions WHERE inventory_item_id = $1`, id); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	return err
}

func (r *inventoryRepo) DeleteByProductTx(ctx context.Context, q database.Querier, productID uuid.UUID) error {
	if _, err := q.Exec(ctx, `
		DELETE FROM inventory_transactions
		WHERE inventory_item_id IN (SELECT id FROM inventory_items WHERE product_id = $1)
	`, productID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM inventory_items WHERE product_id = $1`, productID)
	return err
}

func (r *inventoryRepo) Movements(ctx context.Context, itemID uuid.UUID) ([]*models.InventoryTransaction, error) {
	query := `
		SELECT id, inventory_item_id, quantity, type, description, created_at
		FROM inventory_transactions
		WHERE inventory_item_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.InventoryTransaction
	for rows.Next() {
		m := &models.InventoryTransaction{}
		if err := rows.Scan(&m.ID, &m.InventoryItemID, &m.Quantity, &m.Type, &m.Description, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
