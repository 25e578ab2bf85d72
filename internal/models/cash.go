package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashTransactionType is the direction of a cash ledger entry, keeping the
// ledger's original Portuguese vocabulary: entrada is an inflow, saida an
// outflow.
type CashTransactionType string

const (
	CashIn  CashTransactionType = "entrada"
	CashOut CashTransactionType = "saida"
)

func ParseCashTransactionType(s string) (CashTransactionType, error) {
	switch CashTransactionType(s) {
	case CashIn:
		return CashIn, nil
	case CashOut:
		return CashOut, nil
	}
	return "", fmt.Errorf("unknown cash transaction type %q", s)
}

// Cash categories written by settlements. Manual entries carry whatever
// category the user typed.
const (
	CashCategorySale            = "venda"
	CashCategoryCustomerPayment = "pagamento cliente"
)

// CashTransaction is an immutable cash ledger entry. The running balance
// is always derived by summing entries, never stored.
type CashTransaction struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	Type        CashTransactionType `json:"type" db:"type"`
	Amount      decimal.Decimal     `json:"amount" db:"amount"`
	Category    string              `json:"category" db:"category"`
	Description string              `json:"description" db:"description"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
}

// CashFlow is the derived cash position.
type CashFlow struct {
	TotalEntries decimal.Decimal `json:"total_entries"`
	TotalExits   decimal.Decimal `json:"total_exits"`
	Balance      decimal.Decimal `json:"balance"`
}
