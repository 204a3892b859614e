// Package store provides standardized error types for persistence operations.
package store

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable indicates the persistence port raised; in-memory
// engine state remains consistent and the next successful write persists the
// merged state.
var ErrStorageUnavailable = errors.New("storage unavailable")

// StoreError wraps persistence errors with operation context.
type StoreError struct {
	Op        string // Operation being performed (e.g., "Load", "Save")
	Namespace string // Namespace being accessed
	Err       error  // Underlying error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s operation failed for namespace %s: %v", e.Op, e.Namespace, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for store errors.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target) || target == ErrStorageUnavailable
}

// NewStoreError creates a new store error with context.
func NewStoreError(op, namespace string, err error) *StoreError {
	return &StoreError{
		Op:        op,
		Namespace: namespace,
		Err:       err,
	}
}

// IsStorageUnavailable checks if an error indicates the persistence port failed.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
