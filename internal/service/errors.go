package service

import (
	"errors"
	"fmt"
)

// Error kinds returned by every listing, image and account operation.
// Callers match them with errors.Is; the message carries the detail.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// StorageError reports a failed attachment store call for one item of a request.
type StorageError struct {
	Op    string // save, delete
	Index int    // position of the item in the request
	Item  string // temp handle or stored id
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s file %q (item %d): %v", e.Op, e.Item, e.Index, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
