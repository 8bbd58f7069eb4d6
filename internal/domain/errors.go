package domain

import "errors"

// Sentinel errors shared across services and repositories. Callers match
// with errors.Is; repositories and services wrap them with fmt.Errorf("...: %w").
var (
	// ErrNotFound is returned when a key token resolves to no entity.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned on business-rule violations under concurrent
	// state: already registered, no seats available, or transaction retries
	// exhausted.
	ErrConflict = errors.New("conflicting state")

	// ErrInvalidInput is returned for malformed requests: bad filter
	// combinations, non-numeric values for numeric fields, missing payloads.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when the caller does not own the entity
	// being mutated.
	ErrUnauthorized = errors.New("not authorized")
)
