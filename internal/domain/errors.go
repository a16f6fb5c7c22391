package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrAuthRequired          = errors.New("authentication required")
	ErrQuantityLimitExceeded = errors.New("maximum quantity allowed per item is 5")
	ErrLineNotFound          = errors.New("cart line not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrEmptyCart             = errors.New("cart is empty, nothing to order")
	ErrIllegalTransition     = errors.New("illegal transition of order form state")
)

// FetchError reports a failed call to a remote catalog, rate, identity or
// store endpoint. StatusCode is zero for transport failures.
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch failed with status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s fetch failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ValidationError maps a field path to the rule it broke.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, rule string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: rule}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// WriteError reports a failed document-store or snapshot write. Failed holds
// the indexes of the orders that were rejected in a batch.
type WriteError struct {
	Failed []int
	Err    error
}

func (e *WriteError) Error() string {
	if len(e.Failed) > 0 {
		return fmt.Sprintf("write failed for %d order(s) %v: %v", len(e.Failed), e.Failed, e.Err)
	}
	return fmt.Sprintf("write failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
