package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateScanText(t *testing.T) {
	assert.NoError(t, ValidateScanText("500 Yew logs", 1024))
	assert.ErrorIs(t, ValidateScanText("   \n\t", 1024), ErrValidationFailed)
	assert.ErrorIs(t, ValidateScanText("500 Yew logs", 5), ErrValidationFailed)
}

func TestValidateHolding(t *testing.T) {
	assert.NoError(t, ValidateHolding("Dragon bones", 10, 2800))
	assert.NoError(t, ValidateHolding("Dragon bones", 1, 0))

	assert.ErrorIs(t, ValidateHolding("  ", 10, 2800), ErrValidationFailed)
	assert.ErrorIs(t, ValidateHolding("Dragon bones", 0, 2800), ErrValidationFailed)
	assert.ErrorIs(t, ValidateHolding("Dragon bones", -50, 2800), ErrValidationFailed)
	assert.ErrorIs(t, ValidateHolding("Dragon bones", 10, -100), ErrValidationFailed)
}

func TestValidateNewTrade(t *testing.T) {
	assert.NoError(t, ValidateNewTrade("Coal", 100, 150))

	assert.ErrorIs(t, ValidateNewTrade("", 100, 150), ErrValidationFailed)
	assert.ErrorIs(t, ValidateNewTrade("Coal", 0, 150), ErrValidationFailed)
	assert.ErrorIs(t, ValidateNewTrade("Coal", 100, -1), ErrValidationFailed)
}
