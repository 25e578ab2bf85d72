package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"espetaria/internal/common"
	"espetaria/internal/models"
	"espetaria/internal/services"
)

type ReportHandlers struct {
	reportService services.ReportService
}

func NewReportHandlers(reportService services.ReportService) *ReportHandlers {
	return &ReportHandlers{reportService: reportService}
}

// parseFilter reads the shared report query parameters. The date range
// defaults to the current day.
func parseFilter(c echo.Context) (*models.ReportFilter, error) {
	now := time.Now()
	filter := &models.ReportFilter{
		StartDate:  now.Truncate(24 * time.Hour),
		EndDate:    now,
		Category:   c.QueryParam("category"),
		PriceRange: c.QueryParam("price_range"),
		SortBy:     c.QueryParam("sort_by"),
	}

	if raw := c.QueryParam("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, common.NewValidationError("start_date", "must be YYYY-MM-DD")
		}
		filter.StartDate = parsed
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, common.NewValidationError("end_date", "must be YYYY-MM-DD")
		}
		// Inclusive through the end of the named day.
		filter.EndDate = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return filter, nil
}

// GetSummary handles GET /v1/reports/summary
func (h *ReportHandlers) GetSummary(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	summary, err := h.reportService.Summary(c.Request().Context(), filter)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// GetProductReport handles GET /v1/reports/products
func (h *ReportHandlers) GetProductReport(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	report, err := h.reportService.ProductReport(c.Request().Context(), filter)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// GetBeverageReport handles GET /v1/reports/beverages. Same breakdown as
// the product report, pinned to the beverage category.
func (h *ReportHandlers) GetBeverageReport(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return common.RespondError(c, err)
	}
	filter.Category = "bebida"

	report, err := h.reportService.ProductReport(c.Request().Context(), filter)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// GetConsolidated handles GET /v1/reports/consolidated
func (h *ReportHandlers) GetConsolidated(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return common.RespondError(c, err)
	}

	report, err := h.reportService.Consolidated(c.Request().Context(), filter)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
