package store

import (
	"errors"
	"fmt"

	"github.com/phrazzld/folio-api/internal/domain"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a uniqueness
	// constraint (a reused slug, tag name or post/tag association).
	ErrDuplicate = errors.New("entity already exists")

	// ErrTransactionFailed is returned when a transaction cannot be started
	// or committed. The operation had no visible effect and may be retried.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrConfiguration is returned when the store cannot be set up, for
	// example because no connection string was provided.
	ErrConfiguration = errors.New("configuration error")

	// Entity-specific "not found" errors
	ErrPostNotFound      = fmt.Errorf("%w: post", ErrNotFound)
	ErrTagNotFound       = fmt.Errorf("%w: tag", ErrNotFound)
	ErrPostOrTagNotFound = fmt.Errorf("%w: post or tag", ErrNotFound)
	ErrPostTagNotFound   = fmt.Errorf("%w: tag association", ErrNotFound)

	// Entity-specific "duplicate" errors
	ErrSlugExists    = fmt.Errorf("%w: slug", ErrDuplicate)
	ErrTagNameExists = fmt.Errorf("%w: tag name", ErrDuplicate)
	ErrPostTagExists = fmt.Errorf("%w: tag association", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// EntityError identifies the resource an operation was addressing when it
// failed with a not-found or duplicate condition.
type EntityError struct {
	Entity     string // Display name of the resource, e.g. "Post" or "Post or Tag"
	Identifier string // The key that was looked up or conflicted
	Err        error  // One of the entity-specific sentinels above
}

// Error implements the error interface for EntityError.
func (e *EntityError) Error() string {
	if errors.Is(e.Err, ErrDuplicate) {
		return fmt.Sprintf("%s with identifier '%s' already exists", e.Entity, e.Identifier)
	}
	return fmt.Sprintf("%s with identifier '%s' not found", e.Entity, e.Identifier)
}

// Unwrap returns the wrapped sentinel to support errors.Is/errors.As.
func (e *EntityError) Unwrap() error {
	return e.Err
}

// NewNotFoundError builds an EntityError for a missing resource.
// sentinel should wrap ErrNotFound.
func NewNotFoundError(sentinel error, entity string, identifier any) *EntityError {
	return &EntityError{Entity: entity, Identifier: fmt.Sprint(identifier), Err: sentinel}
}

// NewDuplicateError builds an EntityError for a uniqueness conflict.
// sentinel should wrap ErrDuplicate.
func NewDuplicateError(sentinel error, entity string, identifier any) *EntityError {
	return &EntityError{Entity: entity, Identifier: fmt.Sprint(identifier), Err: sentinel}
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "post", "tag")
	Operation string // The operation that failed (e.g., "create", "patch")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// Kind is the closed set of outcomes a failed store operation resolves to.
type Kind int

const (
	// KindStore covers any infrastructure failure not classified below.
	KindStore Kind = iota
	KindValidation
	KindNotFound
	KindDuplicate
	KindTransaction
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindTransaction:
		return "transaction"
	case KindConfiguration:
		return "configuration"
	default:
		return "store"
	}
}

// KindOf classifies err. Callers should branch on the result rather than
// inspecting driver errors. KindOf(nil) is KindStore; check for nil first.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrTransactionFailed):
		return KindTransaction
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindStore
	}
}
