package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/internal/services"
)

type CustomerHandlers struct {
	customerService services.CustomerService
}

func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

type customerRequest struct {
	Name    string  `json:"name"`
	Contact *string `json:"contact"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// ListCustomers handles GET /v1/customers
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	customers, err := h.customerService.List(c.Request().Context())
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"customers": customers})
}

// GetCustomer handles GET /v1/customers/:id
func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	customer, err := h.customerService.Get(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer handles POST /v1/customers
func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	customer := &models.Customer{
		Name:    req.Name,
		Contact: req.Contact,
		Address: req.Address,
		Notes:   req.Notes,
	}
	if err := h.customerService.Create(c.Request().Context(), customer); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /v1/customers/:id
func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	customer := &models.Customer{
		ID:      id,
		Name:    req.Name,
		Contact: req.Contact,
		Address: req.Address,
		Notes:   req.Notes,
	}
	if err := h.customerService.Update(c.Request().Context(), customer); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /v1/customers/:id
func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	if err := h.customerService.Delete(c.Request().Context(), id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateCustomerTransaction handles POST /v1/customers/:id/transactions.
// Payments lower the owed balance and move cash; credits raise it and
// consume stock.
func (h *CustomerHandlers) CreateCustomerTransaction(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	var req struct {
		Type        string                `json:"type"`
		Amount      decimal.Decimal       `json:"amount"`
		Description string                `json:"description"`
		Items       []services.CreditItem `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	transactionType, err := models.ParseCustomerTransactionType(req.Type)
	if err != nil {
		return common.SendValidationError(c, "type", err.Error())
	}

	ctx := c.Request().Context()
	var transaction *models.CustomerTransaction
	switch transactionType {
	case models.CustomerPayment:
		transaction, err = h.customerService.RecordPayment(ctx, customerID, req.Amount, req.Description)
	case models.CustomerCredit:
		transaction, err = h.customerService.RecordCredit(ctx, customerID, req.Items)
	}
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, transaction)
}

// ListCustomerTransactions handles GET /v1/customers/:id/transactions
func (h *CustomerHandlers) ListCustomerTransactions(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	transactions, err := h.customerService.Transactions(c.Request().Context(), customerID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": transactions})
}

// GetCustomerBalance handles GET /v1/customers/:id/balance
func (h *CustomerHandlers) GetCustomerBalance(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	balance, err := h.customerService.Balance(c.Request().Context(), customerID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"balance": balance})
}
