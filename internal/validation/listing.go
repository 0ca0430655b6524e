package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxListingNameLength        = 120
	MaxListingDescriptionLength = 2000
)

// ValidateRequiredText checks that a text field is present and within max runes
func ValidateRequiredText(field, value string, max int) error {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return fmt.Errorf("%s is required", field)
	}

	if utf8.RuneCountInString(trimmed) > max {
		return fmt.Errorf("%s is too long (max %d characters)", field, max)
	}

	return nil
}

// ValidatePrice requires a positive amount in cents
func ValidatePrice(cents int64) error {
	if cents <= 0 {
		return errors.New("price must be greater than zero")
	}
	return nil
}
