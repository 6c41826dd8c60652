package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNetwork      = errors.New("remote service is unreachable")
	ErrUnauthorized = errors.New("authentication rejected")
	ErrValidation   = errors.New("validation rejected")
	ErrNotFound     = errors.New("not found")
	ErrCorrupted    = errors.New("stored value is corrupted")

	ErrOutOfStock          = errors.New("product is out of stock")
	ErrStockExceeded       = errors.New("quantity exceeds available stock")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrCheckoutUnavailable = errors.New("checkout is not available yet")
)

// A ValidationError lists the problems found in local input.
// It matches ErrValidation.
type ValidationError struct {
	Problems []string
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// An APIError is a non-2xx answer of the remote service.
//
// Kind is one of ErrNetwork, ErrUnauthorized, ErrValidation, ErrNotFound.
type APIError struct {
	Kind   error
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// Detail returns the server-provided detail or the local validation
// problems carried by err, or fallback.
func Detail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) && len(vErr.Problems) != 0 {
		return strings.Join(vErr.Problems, "; ")
	}
	return fallback
}
