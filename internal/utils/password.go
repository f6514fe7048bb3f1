package utils

import (
	"errors"
	"fmt"
	"unicode"
)

var (
	ErrPasswordTooShort  = errors.New("password is too short")
	ErrPasswordTooLong   = errors.New("password must be at most 72 bytes")
	ErrPasswordNoLetter  = errors.New("password must contain at least one letter")
	ErrPasswordNoDigit   = errors.New("password must contain at least one digit")
	ErrPasswordAllSpaces = errors.New("password must not be blank")
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// ValidatePasswordStrength checks a signup password against the account policy.
func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, MinPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}

	var hasLetter, hasDigit, hasNonSpace bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if !unicode.IsSpace(r) {
			hasNonSpace = true
		}
	}

	if !hasNonSpace {
		return ErrPasswordAllSpaces
	}
	if !hasLetter {
		return ErrPasswordNoLetter
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	return nil
}
