package store

import "errors"

// Error Handling Guidelines:
// - Stores: wrap raw errors with fmt.Errorf("context: %w", err) and mark the
//   category with one of the sentinels below.
// - Models: translate sentinels into apperrors.* values.
// - Handlers: only ever see apperrors.

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden indicates that the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a uniqueness violation, e.g. a duplicate slug.
	ErrConflict = errors.New("conflict")
)
