package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the analytics core. Callers match them with
// errors.Is; the concrete types below carry the details.
var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrNoDataInRange       = errors.New("no data in range")
	ErrInvalidInput        = errors.New("invalid input")
)

// ProviderError reports a failure talking to an external data source.
type ProviderError struct {
	Provider string
	Err      error
}

// NewProviderError wraps err as a ProviderError. An err that already is one
// is returned unchanged.
func NewProviderError(provider string, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, ErrProviderUnavailable, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProviderUnavailable }

// CompanyNotFoundError reports a resolution miss.
type CompanyNotFoundError struct {
	Input string
}

func (e *CompanyNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrCompanyNotFound, e.Input)
}

func (e *CompanyNotFoundError) Is(target error) bool { return target == ErrCompanyNotFound }

// InvalidInputError reports a request rejected before any provider call.
type InvalidInputError struct {
	Field  string
	Reason string
}

// NewInvalidInput builds an InvalidInputError.
func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }
