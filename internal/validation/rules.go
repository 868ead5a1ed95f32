// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/courier-sync/internal/errors"
	queueDomain "github.com/allisson/courier-sync/internal/queue/domain"
)

var (
	// phoneRegex accepts E.164-style numbers with an optional leading plus
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Phone validates phone number format
var Phone = validation.NewStringRuleWithError(
	func(s string) bool {
		return phoneRegex.MatchString(s)
	},
	validation.NewError("validation_phone_format", "must be a valid phone number"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// PriorityTier validates that a string names a queue priority tier.
var PriorityTier = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_priority_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := queueDomain.ParsePriority(s); err != nil {
		return validation.NewError(
			"validation_priority_tier",
			"must be one of: low, normal, high, critical",
		)
	}
	return nil
})
