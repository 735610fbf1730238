package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means a referenced user or recipe does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique username or email is already taken
	ErrConflict = errors.New("already exists")
	// ErrInvalidInput means the caller supplied malformed values
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned by login and password changes
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden means the caller does not own the record
	ErrForbidden = errors.New("forbidden")
)

// storeError maps gorm errors onto the service taxonomy
func storeError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
