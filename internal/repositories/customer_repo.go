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

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	// Delete cascades through transaction items and transactions via
	// foreign keys.
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsTx(ctx context.Context, q database.Querier, id uuid.UUID) error
	InsertTransactionTx(ctx context.Context, q database.Querier, transaction *models.CustomerTransaction) error
	InsertTransactionItemTx(ctx context.Context, q database.Querier, item *models.CustomerTransactionItem) error
	Transactions(ctx context.Context, customerID uuid.UUID) ([]*models.CustomerTransaction, error)
	// Balance derives sum(credit) - sum(payment); never stored.
	Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

type customerRepo struct {
	db database.DB
}

func NewCustomerRepo(db database.DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, name, contact, address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, customer.ID, customer.Name, customer.Contact, customer.Address, customer.Notes)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c := &models.Customer{}
	query := `
		SELECT id, name, contact, address, notes, created_at, updated_at
		FROM customers
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Contact, &c.Address, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("customer", id.String())
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepo) List(ctx context.Context) ([]*models.Customer, error) {
	query := `
		SELECT id, name, contact, address, notes, created_at, updated_at
		FROM customers
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c := &models.Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Contact, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, contact = $2, address = $3, notes = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query, customer.Name, customer.Contact, customer.Address, customer.Notes, customer.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("customer", customer.ID.String())
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("customer", id.String())
	}
	return nil
}

func (r *customerRepo) ExistsTx(ctx context.Context, q database.Querier, id uuid.UUID) error {
	var found uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewNotFoundError("customer", id.String())
	}
	return err
}

func (r *customerRepo) InsertTransactionTx(ctx context.Context, q database.Querier, transaction *models.CustomerTransaction) error {
	query := `
		INSERT INTO customer_transactions (id, customer_id, amount, description, type, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := q.Exec(ctx, query, transaction.ID, transaction.CustomerID, transaction.Amount,
		transaction.Description, transaction.Type)
	return err
}

func (r *customerRepo) InsertTransactionItemTx(ctx context.Context, q database.Querier, item *models.CustomerTransactionItem) error {
	query := `
		INSERT INTO customer_transaction_items (id, customer_transaction_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.Exec(ctx, query, item.ID, item.CustomerTransactionID, item.ProductID, item.Quantity, item.UnitPrice)
	return err
}

func (r *customerRepo) Transactions(ctx context.Context, customerID uuid.UUID) ([]*models.CustomerTransaction, error) {
	query := `
		SELECT id, customer_id, amount, description, type, created_at
		FROM customer_transactions
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.CustomerTransaction
	for rows.Next() {
		t := &models.CustomerTransaction{}
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Amount, &t.Description, &t.Type, &t.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *customerRepo) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0)
		     - COALESCE(SUM(amount) FILTER (WHERE type = 'payment'), 0)
		FROM customer_transactions
		WHERE customer_id = $1
	`
	err := r.db.QueryRow(ctx, query, customerID).Scan(&balance)
	return balance, err
}
