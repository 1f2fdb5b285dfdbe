// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"

	"options-signals/internal/models"
)

// Standard sentinel errors
var (
	ErrStoreUnavailable = errors.New("signal store unavailable")
	ErrDuplicateSignal  = errors.New("duplicate signal")
	ErrNoQuote          = errors.New("no quote available")
	ErrSignalNotFound   = errors.New("signal not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
)

// ParameterError represents a malformed pricing input. It is fatal to the
// single leg or strategy evaluation that produced it, never to the batch.
type ParameterError struct {
	Name    string
	Value   float64
	Message string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Message)
}

// NewParameterError creates a new ParameterError.
func NewParameterError(name string, value float64, message string) *ParameterError {
	return &ParameterError{
		Name:    name,
		Value:   value,
		Message: message,
	}
}

// SignalError represents a failed signal generation for one symbol/strategy
// pair. Sibling strategies and symbols continue independently.
type SignalError struct {
	Symbol   string
	Strategy models.Strategy
	Err      error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("signal generation failed [%s %s]: %v", e.Symbol, e.Strategy, e.Err)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}

// NewSignalError creates a new SignalError.
func NewSignalError(symbol string, strategy models.Strategy, err error) *SignalError {
	return &SignalError{
		Symbol:   symbol,
		Strategy: strategy,
		Err:      err,
	}
}

// StoreError represents a store failure. Store failures are fatal to the
// current evaluation cycle; the next cycle retries.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s]: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches StoreError against the ErrStoreUnavailable sentinel.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
