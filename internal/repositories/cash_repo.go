package repositories

import (
	"context"

	"espetaria/internal/models"
	"espetaria/pkg/database"
)

type CashRepository interface {
	Insert(ctx context.Context, transaction *models.CashTransaction) error
	InsertTx(ctx context.Context, q database.Querier, transaction *models.CashTransaction) error
	// Flow derives the cash position by summing the ledger; the balance is
	// never stored.
	Flow(ctx context.Context) (*models.CashFlow, error)
	List(ctx context.Context, limit, offset int) ([]*models.CashTransaction, error)
}

type cashRepo struct {
	db database.DB
}

func NewCashRepo(db database.DB) CashRepository {
	return &cashRepo{db: db}
}

func (r *cashRepo) Insert(ctx context.Context, transaction *models.CashTransaction) error {
	return r.InsertTx(ctx, r.db, transaction)
}

func (r *cashRepo) InsertTx(ctx context.Context, q database.Querier, transaction *models.CashTransaction) error {
	query := `
		INSERT INTO cash_transactions (id, type, amount, category, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := q.Exec(ctx, query, transaction.ID, transaction.Type, transaction.Amount,
		transaction.Category, transaction.Description)
	return err
}

func (r *cashRepo) Flow(ctx context.Context) (*models.CashFlow, error) {
	flow := &models.CashFlow{}
	query := `
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'entrada'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE type = 'saida'), 0)
		FROM cash_transactions
	`
	if err := r.db.QueryRow(ctx, query).Scan(&flow.TotalEntries, &flow.TotalExits); err != nil {
		return nil, err
	}
	flow.Balance = flow.TotalEntries.Sub(flow.TotalExits)
	return flow, nil
}

func (r *cashRepo) List(ctx context.Context, limit, offset int) ([]*models.CashTransaction, error) {
	query := `
		SELECT id, type, amount, category, description, created_at
		FROM cash_transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.CashTransaction
	for rows.Next() {
		t := &models.CashTransaction{}
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
