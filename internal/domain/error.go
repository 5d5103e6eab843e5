// Package domain defines the pharmacy inventory types and their error taxonomy.
package domain

import (
	"errors"
	"fmt"
)

// ValidationError is returned when an input is malformed or out of range.
type ValidationError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// Is allows proper error type checking with errors.Is()
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// InvalidQuantityError is returned when a dispense quantity is not a positive integer.
type InvalidQuantityError struct {
	Value interface{}
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be a positive integer (got %v)", e.Value)
}

// Is allows proper error type checking with errors.Is()
func (e *InvalidQuantityError) Is(target error) bool {
	_, ok := target.(*InvalidQuantityError)
	return ok
}

// InsufficientStockError is returned when the ledger cannot cover a request.
type InsufficientStockError struct {
	ProductID uint
	BatchID   uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.BatchID != 0 {
		return fmt.Sprintf("insufficient stock in batch %d: requested %d, available %d", e.BatchID, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// Is allows proper error type checking with errors.Is()
func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// NotFoundError is returned when a product or batch does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%d", e.Entity, e.ID)
}

// Is allows proper error type checking with errors.Is()
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ConcurrencyError is returned when a product lock could not be obtained in
// time. Callers may retry.
type ConcurrencyError struct {
	ProductID uint
	Cause     error
}

func (e *ConcurrencyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("product %d is busy, retry later: %v", e.ProductID, e.Cause)
	}
	return fmt.Sprintf("product %d is busy, retry later", e.ProductID)
}

func (e *ConcurrencyError) Unwrap() error {
	return e.Cause
}

// Is allows proper error type checking with errors.Is()
func (e *ConcurrencyError) Is(target error) bool {
	_, ok := target.(*ConcurrencyError)
	return ok
}

// ConfigurationError is returned when a classification threshold is invalid.
type ConfigurationError struct {
	Setting string
	Value   int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s must be positive (got %d)", e.Setting, e.Value)
}

// Is allows proper error type checking with errors.Is()
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok
}

// Helper functions for creating errors with context

func NewValidationError(field, reason string, value interface{}) error {
	return &ValidationError{Field: field, Reason: reason, Value: value}
}

func NewInvalidQuantityError(value interface{}) error {
	return &InvalidQuantityError{Value: value}
}

func NewInsufficientStockError(productID uint, requested, available int) error {
	return &InsufficientStockError{ProductID: productID, Requested: requested, Available: available}
}

func NewBatchInsufficientStockError(batchID uint, requested, available int) error {
	return &InsufficientStockError{BatchID: batchID, Requested: requested, Available: available}
}

func NewNotFoundError(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func NewConcurrencyError(productID uint, cause error) error {
	return &ConcurrencyError{ProductID: productID, Cause: cause}
}

func NewConfigurationError(setting string, value int) error {
	return &ConfigurationError{Setting: setting, Value: value}
}

// Type assertion helpers for use with errors.As()

func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsInvalidQuantityError(err error) bool {
	var e *InvalidQuantityError
	return errors.As(err, &e)
}

func IsInsufficientStockError(err error) bool {
	var e *InsufficientStockError
	return errors.As(err, &e)
}

func IsNotFoundError(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsConcurrencyError(err error) bool {
	var e *ConcurrencyError
	return errors.As(err, &e)
}

func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}
