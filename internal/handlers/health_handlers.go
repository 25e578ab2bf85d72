package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"espetaria/pkg/database"
)

type HealthHandlers struct {
	db database.DB
}

func NewHealthHandlers(db database.DB) *HealthHandlers {
	return &HealthHandlers{db: db}
}

// HealthCheck handles GET /health
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /health/ready, probing the database.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx := c.Request().Context()

	var one int
	if err := h.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":   "not ready",
			"database": "unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
