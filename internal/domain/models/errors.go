package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName indicates another item already owns the normalized name.
	ErrDuplicateName = errors.New("an item with this name already exists")
	// ErrEmptyOrder is returned when an order is requested without lines.
	ErrEmptyOrder = errors.New("order has no lines")
	// ErrOrderNotFound indicates the order header does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderFinalized indicates the order was already received and can no longer change.
	ErrOrderFinalized = errors.New("order already received")
	// ErrItemNotFound indicates the catalog item does not exist.
	ErrItemNotFound = errors.New("item not found")
	// ErrStoreNotFound indicates the store does not exist.
	ErrStoreNotFound = errors.New("store not found")
	// ErrUnauthenticated is returned by write operations invoked without an actor.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrStorageUnavailable marks transient backend failures; the whole operation may be retried.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrValidation is the parent of every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a required field that is blank or out of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
