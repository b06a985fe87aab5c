package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidationFailed marks user-input validation failures so handlers
// can map them to 400 responses.
var ErrValidationFailed = errors.New("validation failed")

// ValidateScanText checks the recognized-text payload of a screenshot
// scan before it enters the import pipeline.
func ValidateScanText(text string, maxSizeBytes int64) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: recognized text is empty", ErrValidationFailed)
	}
	if int64(len(text)) > maxSizeBytes {
		return fmt.Errorf("%w: recognized text exceeds %d bytes", ErrValidationFailed, maxSizeBytes)
	}
	return nil
}

// ValidateHolding checks a user-reviewed import row before it is
// persisted. Quantity and price are user-editable between scan and
// confirm, so confirmed values cannot be trusted.
func ValidateHolding(itemName string, quantity int, buyPrice int64) error {
	if strings.TrimSpace(itemName) == "" {
		return fmt.Errorf("%w: item name is required", ErrValidationFailed)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive for item %q", ErrValidationFailed, itemName)
	}
	if buyPrice < 0 {
		return fmt.Errorf("%w: buy price cannot be negative for item %q", ErrValidationFailed, itemName)
	}
	return nil
}

// ValidateNewTrade checks user-supplied trade fields.
func ValidateNewTrade(itemName string, quantity int, buyPrice int64) error {
	if strings.TrimSpace(itemName) == "" {
		return fmt.Errorf("%w: item name is required", ErrValidationFailed)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidationFailed)
	}
	if buyPrice < 0 {
		return fmt.Errorf("%w: buy price cannot be negative", ErrValidationFailed)
	}
	return nil
}
