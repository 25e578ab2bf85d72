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

type OrderHandlers struct {
	orderService services.OrderService
}

func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

// ListOpenOrders handles GET /v1/orders
func (h *OrderHandlers) ListOpenOrders(c echo.Context) error {
	orders, err := h.orderService.ListOpen(c.Request().Context())
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"orders": orders})
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	order, err := h.orderService.Get(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// CreateOrder handles POST /v1/orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	var req struct {
		TableNumber  int     `json:"table_number"`
		CustomerName *string `json:"customer_name"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	order, err := h.orderService.Create(c.Request().Context(), req.TableNumber, req.CustomerName)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// AddOrderItem handles POST /v1/orders/:id/items
func (h *OrderHandlers) AddOrderItem(c echo.Context) error {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	var req struct {
		ProductID uuid.UUID       `json:"product_id"`
		Quantity  decimal.Decimal `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	if err := h.orderService.AddItem(c.Request().Context(), orderID, req.ProductID, req.Quantity); err != nil {
		return common.RespondError(c, err)
	}

	order, err := h.orderService.Get(c.Request().Context(), orderID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// RemoveOrderItem handles DELETE /v1/order-items/:id
func (h *OrderHandlers) RemoveOrderItem(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	if err := h.orderService.RemoveItem(c.Request().Context(), itemID); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PayPartial handles POST /v1/orders/:id/payments
func (h *OrderHandlers) PayPartial(c echo.Context) error {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	var req struct {
		Payments []models.PartialPayment `json:"payments"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	if err := h.orderService.PayPartial(c.Request().Context(), orderID, req.Payments); err != nil {
		return common.RespondError(c, err)
	}

	order, err := h.orderService.Get(c.Request().Context(), orderID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// CloseOrder handles POST /v1/orders/:id/close
func (h *OrderHandlers) CloseOrder(c echo.Context) error {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	order, err := h.orderService.Close(c.Request().Context(), orderID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}
