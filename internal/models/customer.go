package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Contact   *string   `json:"contact" db:"contact"`
	Address   *string   `json:"address" db:"address"`
	Notes     *string   `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerTransactionType distinguishes a sale on account (credit, raises
// the owed balance) from a payment (lowers it). The balance itself is
// always derived: sum(credit) - sum(payment).
type CustomerTransactionType string

const (
	CustomerCredit  CustomerTransactionType = "credit"
	CustomerPayment CustomerTransactionType = "payment"
)

func ParseCustomerTransactionType(s string) (CustomerTransactionType, error) {
	switch CustomerTransactionType(s) {
	case CustomerCredit:
		return CustomerCredit, nil
	case CustomerPayment:
		return CustomerPayment, nil
	}
	return "", fmt.Errorf("unknown customer transaction type %q", s)
}

type CustomerTransaction struct {
	ID          uuid.UUID                  `json:"id" db:"id"`
	CustomerID  uuid.UUID                  `json:"customer_id" db:"customer_id"`
	Amount      decimal.Decimal            `json:"amount" db:"amount"`
	Description string                     `json:"description" db:"description"`
	Type        CustomerTransactionType    `json:"type" db:"type"`
	CreatedAt   time.Time                  `json:"created_at" db:"created_at"`
	Items       []*CustomerTransactionItem `json:"items,omitempty"`
}

// CustomerTransactionItem snapshots one credit-sale line. UnitPrice is
// captured at transaction time and is immune to later catalog price
// changes.
type CustomerTransactionItem struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	CustomerTransactionID uuid.UUID       `json:"customer_transaction_id" db:"customer_transaction_id"`
	ProductID             uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity              decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice             decimal.Decimal `json:"unit_price" db:"unit_price"`
}
