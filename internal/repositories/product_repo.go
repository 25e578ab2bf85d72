package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/pkg/database"
)

type ProductRepository interface {
	List(ctx context.Context) ([]*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// GetActiveTx resolves a non-deleted product inside a caller-owned
	// transaction.
	GetActiveTx(ctx context.Context, q database.Querier, id uuid.UUID) (*models.Product, error)
	CreateTx(ctx context.Context, q database.Querier, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	SoftDeleteTx(ctx context.Context, q database.Querier, id uuid.UUID) error
}

type productRepo struct {
	db database.DB
}

func NewProductRepo(db database.DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = "id, name, price, category, barcode, deleted, created_at, updated_at"

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Barcode, &p.Deleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context) ([]*models.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE deleted = FALSE
		ORDER BY name
	`, productColumns)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("product", id.String())
	}
	return p, err
}

func (r *productRepo) GetActiveTx(ctx context.Context, q database.Querier, id uuid.UUID) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1 AND deleted = FALSE`, productColumns)
	p, err := scanProduct(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("product", id.String())
	}
	return p, err
}

func (r *productRepo) CreateTx(ctx context.Context, q database.Querier, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, price, category, barcode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := q.Exec(ctx, query, product.ID, product.Name, product.Price, product.Category, product.Barcode)
	return err
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, price = $2, category = $3, barcode = $4, updated_at = NOW()
		WHERE id = $5 AND deleted = FALSE
	`
	tag, err := r.db.Exec(ctx, query, product.Name, product.Price, product.Category, product.Barcode, product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("product", product.ID.String())
	}
	return nil
}

func (r *productRepo) SoftDeleteTx(ctx context.Context, q database.Querier, id uuid.UUID) error {
	tag, err := q.Exec(ctx, `UPDATE products SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("product", id.String())
	}
	return nil
}
