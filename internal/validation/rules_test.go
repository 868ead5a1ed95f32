package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/courier-sync/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("NilError", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("WrapsAsInvalidInput", func(t *testing.T) {
		err := WrapValidationError(errors.New("name: cannot be blank"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "name: cannot be blank")
	})
}

func TestPhone(t *testing.T) {
	valid := []string{"+5511999990000", "5511999990000", "+14155550123", "12345678"}
	for _, number := range valid {
		assert.NoError(t, Phone.Validate(number), number)
	}

	invalid := []string{"", "123", "phone", "+55 11 99999", "+5511999990000000000"}
	for _, number := range invalid {
		assert.Error(t, Phone.Validate(number), number)
	}
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("driver-1"))
	assert.NoError(t, NoWhitespace.Validate("two words"))
	assert.Error(t, NoWhitespace.Validate(" leading"))
	assert.Error(t, NoWhitespace.Validate("trailing "))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("x"))
	assert.Error(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
}

func TestPriorityTier(t *testing.T) {
	for _, tier := range []string{"low", "normal", "high", "critical"} {
		assert.NoError(t, PriorityTier.Validate(tier), tier)
	}

	// Empty is left to Required.
	assert.NoError(t, PriorityTier.Validate(""))

	assert.Error(t, PriorityTier.Validate("urgent"))
	assert.Error(t, PriorityTier.Validate("CRITICAL"))
	assert.Error(t, PriorityTier.Validate(42))
}
