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

type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

type productRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Barcode  *string         `json:"barcode"`
}

// ListProducts handles GET /v1/products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	products, err := h.productService.List(c.Request().Context())
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"products": products})
}

// GetProduct handles GET /v1/products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	product, err := h.productService.Get(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /v1/products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	product := &models.Product{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Barcode:  req.Barcode,
	}
	if err := h.productService.Create(c.Request().Context(), product); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /v1/products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	product := &models.Product{
		ID:       id,
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Barcode:  req.Barcode,
	}
	if err := h.productService.Update(c.Request().Context(), product); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /v1/products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "invalid UUID")
	}

	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		return common.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
