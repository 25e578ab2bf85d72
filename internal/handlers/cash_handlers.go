package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"espetaria/internal/common"
	"espetaria/internal/services"
)

type CashHandlers struct {
	cashService services.CashService
}

func NewCashHandlers(cashService services.CashService) *CashHandlers {
	return &CashHandlers{cashService: cashService}
}

// CreateCashTransaction handles POST /v1/cash-transactions
func (h *CashHandlers) CreateCashTransaction(c echo.Context) error {
	var req struct {
		Type        string          `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	transaction, err := h.cashService.Add(c.Request().Context(), req.Type, req.Amount, req.Category, req.Description)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, transaction)
}

// ListCashTransactions handles GET /v1/cash-transactions
func (h *CashHandlers) ListCashTransactions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	transactions, err := h.cashService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": transactions})
}

// GetCashFlow handles GET /v1/cash-flow
func (h *CashHandlers) GetCashFlow(c echo.Context) error {
	flow, err := h.cashService.Flow(c.Request().Context())
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, flow)
}
