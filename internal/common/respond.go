package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"espetaria/pkg/logger"
)

// ErrorResponse is the standardized error envelope returned by every
// handler.
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response.
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response.
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// RespondError maps a service error to the matching HTTP status and
// envelope. All prior state is unchanged when this is reached: failed
// operations roll back before propagating.
func RespondError(c echo.Context, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		details := map[string]string{}
		if ve.Field != "" {
			details[ve.Field] = ve.Message
		}
		return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", ve.Message, details))
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", nf.Error(), nil))
	}

	var is *InvalidStateError
	if errors.As(err, &is) {
		return c.JSON(http.StatusConflict, CreateErrorResponse("INVALID_STATE", is.Error(), nil))
	}

	logger.Get().Error("unhandled service error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", "operation could not be completed", nil))
}
