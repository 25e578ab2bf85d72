package common

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidateRequiredString validates required string fields.
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fieldName, "is required")
	}
	return nil
}

// ValidatePositiveAmount rejects zero or negative monetary amounts and
// quantities.
func ValidatePositiveAmount(value decimal.Decimal, fieldName string) error {
	if value.Sign() <= 0 {
		return NewValidationError(fieldName, "must be positive")
	}
	return nil
}

// ValidateNonNegativeAmount rejects negative values only.
func ValidateNonNegativeAmount(value decimal.Decimal, fieldName string) error {
	if value.Sign() < 0 {
		return NewValidationError(fieldName, "cannot be negative")
	}
	return nil
}

// ValidateDateRange validates report date ranges.
func ValidateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return NewValidationError("date_range", "end date cannot be before start date")
	}
	return nil
}
