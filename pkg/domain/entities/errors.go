package entities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an id is absent from its collection
	ErrNotFound = errors.New("not found")
	// ErrValidation is matched by every ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is matched by every InvalidTransitionError
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInsufficientStock is matched by every InsufficientStockError
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicate is returned when a unique key is already taken
	ErrDuplicate = errors.New("duplicate")
)

// NotFoundError wraps ErrNotFound with the entity kind and key
func NotFoundError(entity, key string) error {
	return fmt.Errorf("%s %s: %w", entity, key, ErrNotFound)
}

// ValidationError lists the fields that failed validation, keyed by field
// path, valued by the failed rule.
type ValidationError struct {
	Entity string
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError for an entity
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity, Fields: make(map[string]string)}
}

// Add records a failed rule for a field
func (e *ValidationError) Add(field, rule string) {
	e.Fields[field] = rule
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns the error when fields failed, nil otherwise
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + e.Fields[k]
	}
	return fmt.Sprintf("%s validation failed: %s", e.Entity, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InvalidTransitionError reports a state change the state machine forbids
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s cannot move from %s to %s", e.Entity, e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// InsufficientStockError reports a decrement that would drive quantity below zero
type InsufficientStockError struct {
	ProductCode string
	Available   Quantity
	Requested   Quantity
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ProductCode, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
