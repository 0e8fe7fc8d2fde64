package apperrors

import (
	"errors"
	"fmt"
)

// Domain entity errors represent missing records in the holdings store.
var (
	// ErrHoldingNotFound indicates that a holding with the given ID does not exist for the user.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrWatchlistItemNotFound indicates that the coin is not on the user's watchlist.
	ErrWatchlistItemNotFound = errors.New("watchlist item not found")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrUnauthorized indicates a missing or invalid session token.
	ErrUnauthorized = errors.New("unauthorized")
)

// UpstreamError is a transport, timeout or non-2xx failure from the market-data provider.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s failed with status %d: %v", e.Endpoint, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("upstream %s failed: %v", e.Endpoint, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// NotFoundError means the provider explicitly reported that the asset does not exist.
// It represents a user input mistake and is never swallowed.
type NotFoundError struct {
	CoinID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("coin %q not found", e.CoinID)
}

// ValidationError is malformed caller input, rejected before any cache or upstream interaction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsUpstream reports whether err wraps an UpstreamError
func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation reports whether err wraps a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
