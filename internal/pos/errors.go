package pos

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrUnknownProduct     = errors.New("unknown product")
	ErrUnknownMember      = errors.New("unknown member")
	ErrNoOperator         = errors.New("checkout requires an authenticated operator")
	ErrNotFound           = errors.New("transaction not found")
)

// ValidationError reports rejected request fields. Keys use the request's
// JSON paths, e.g. "items.1.quantity".
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string, cause error) *ValidationError {
	v := &ValidationError{Err: cause}
	v.Add(field, msg)
	return v
}

// StockError names the product whose stock cannot cover the cart.
type StockError struct {
	ProductID uint
	Name      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product: %s (available %d, requested %d)", e.Name, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
