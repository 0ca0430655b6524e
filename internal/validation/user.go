package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}

	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address format")
	}

	return nil
}

// ValidateTel accepts digits with optional +, spaces, dashes and parentheses
func ValidateTel(tel string) error {
	digits := 0
	for _, r := range tel {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune("+-() ", r):
		default:
			return errors.New("phone may only contain digits, spaces, +, - and parentheses")
		}
	}

	if digits < 8 || digits > 15 {
		return errors.New("phone must have between 8 and 15 digits")
	}

	return nil
}

// ValidatePassword checks length bounds
// bcrypt silently truncates input longer than 72 bytes
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	return nil
}
