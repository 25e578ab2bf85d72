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

type InventoryHandlers struct {
	inventoryService services.InventoryService
}

func NewInventoryHandlers(inventoryService services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{inventoryService: inventoryService}
}

// ListInventory handles GET /v1/inventory
func (h *InventoryHandlers) ListInventory(c echo.Context) error {
	items, err := h.inventoryService.List(c.Request().Context())
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GetInventoryItem handles GET /v1/inventory/:id
func (h *InventoryHandlers) GetInventoryItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	item, err := h.inventoryService.Get(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// CreateInventoryItem handles POST /v1/inventory
func (h *InventoryHandlers) CreateInventoryItem(c echo.Context) error {
	var req struct {
		Name        string          `json:"name"`
		Unit        string          `json:"unit"`
		Quantity    decimal.Decimal `json:"quantity"`
		MinQuantity decimal.Decimal `json:"min_quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	item, err := h.inventoryService.AddManual(c.Request().Context(), req.Name, req.Unit, req.Quantity, req.MinQuantity)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// AdjustInventory handles POST /v1/inventory/:id/adjust
func (h *InventoryHandlers) AdjustInventory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	var req struct {
		Type        string          `json:"type"`
		Quantity    decimal.Decimal `json:"quantity"`
		Description string          `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	// Older clients still send "entrada"/"add"/"saida"; canonicalize here.
	movementType, err := models.ParseMovementType(req.Type)
	if err != nil {
		return common.SendValidationError(c, "type", err.Error())
	}

	if err := h.inventoryService.Adjust(c.Request().Context(), id, movementType, req.Quantity, req.Description); err != nil {
		return common.RespondError(c, err)
	}

	item, err := h.inventoryService.Get(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// UpdateInventoryItem handles PUT /v1/inventory/:id
func (h *InventoryHandlers) UpdateInventoryItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	var req struct {
		Unit        string          `json:"unit"`
		MinQuantity decimal.Decimal `json:"min_quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	if err := h.inventoryService.UpdateMeta(c.Request().Context(), id, req.Unit, req.MinQuantity); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleAlert handles PUT /v1/inventory/:id/alert
func (h *InventoryHandlers) ToggleAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	var req struct {
		Disabled bool `json:"disabled"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	if err := h.inventoryService.SetAlertDisabled(c.Request().Context(), id, req.Disabled); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteInventoryItem handles DELETE /v1/inventory/:id
func (h *InventoryHandlers) DeleteInventoryItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	if err := h.inventoryService.Delete(c.Request().Context(), id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMovements handles GET /v1/inventory/:id/transactions
func (h *InventoryHandlers) ListMovements(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	movements, err := h.inventoryService.Movements(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": movements})
}

// ListLowStock handles GET /v1/inventory/low-stock
func (h *InventoryHandlers) ListLowStock(c echo.Context) error {
	items, err := h.inventoryService.LowStock(c.Request().Context())
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
