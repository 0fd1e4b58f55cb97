package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Available *int   `json:"available,omitempty"`
	Requested *int   `json:"requested,omitempty"`
}

// Standard error codes for API and domain errors
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeMissingField           = "MISSING_FIELD"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeInternalError          = "INTERNAL_ERROR"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeInvalidTransition      = "INVALID_TRANSITION"
	ErrCodeCannotCancel           = "CANNOT_CANCEL"
	ErrCodeInsufficientStock      = "INSUFFICIENT_STOCK"
	ErrCodeProductInactive        = "PRODUCT_INACTIVE"
	ErrCodeInactiveParent         = "INACTIVE_PARENT"
	ErrCodeHierarchyMismatch      = "HIERARCHY_MISMATCH"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeEmptyCart              = "EMPTY_CART"
	ErrCodeOrderDeletionForbidden = "ORDER_DELETION_FORBIDDEN"
	ErrCodeStoreUnavailable       = "STORE_UNAVAILABLE"
	ErrCodeDuplicateName          = "DUPLICATE_NAME"
	ErrCodeInvalidOrderDetails    = "INVALID_ORDER_DETAILS"
	ErrCodeInvalidField           = "INVALID_FIELD"
	ErrCodeProductInUse           = "PRODUCT_IN_USE"
)

// DomainError is a business-rule or store failure surfaced to callers.
// Two domain errors match under errors.Is when their codes are equal, so
// callers compare against the sentinels below even when a more specific
// message or cause was attached.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrInvalidTransition      = NewDomainError(ErrCodeInvalidTransition, "Order state transition is not allowed")
	ErrCannotCancel           = NewDomainError(ErrCodeCannotCancel, "Order can only be cancelled while pending or paid")
	ErrInsufficientStock      = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrProductInactive        = NewDomainError(ErrCodeProductInactive, "Product is inactive")
	ErrInactiveParent         = NewDomainError(ErrCodeInactiveParent, "Parent category or subcategory is inactive")
	ErrHierarchyMismatch      = NewDomainError(ErrCodeHierarchyMismatch, "Subcategory does not belong to the given category")
	ErrInvalidQuantity        = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmptyCart              = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrOrderDeletionForbidden = NewDomainError(ErrCodeOrderDeletionForbidden, "Orders cannot be deleted, cancel instead")
	ErrStoreUnavailable       = NewDomainError(ErrCodeStoreUnavailable, "Store unavailable, retry later")
	ErrDuplicateName          = NewDomainError(ErrCodeDuplicateName, "Name already in use")
	ErrInvalidOrderDetails    = NewDomainError(ErrCodeInvalidOrderDetails, "Shipping address and contact phone are required")
	ErrMissingField           = NewDomainError(ErrCodeMissingField, "Required field is missing")
	ErrInvalidField           = NewDomainError(ErrCodeInvalidField, "Field value is invalid")
	ErrProductInUse           = NewDomainError(ErrCodeProductInUse, "Product is referenced by orders and cannot be removed")
)

// MissingField returns a MissingField error naming field.
func MissingField(field string) error {
	return &DomainError{
		Code:    ErrCodeMissingField,
		Message: field + " is required",
	}
}

// InvalidField returns an InvalidField error with a specific message.
func InvalidField(message string) error {
	return &DomainError{
		Code:    ErrCodeInvalidField,
		Message: message,
	}
}

// NotFound returns a NotFound error naming the missing entity.
func NotFound(entity string, id uuid.UUID) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// StoreUnavailable wraps a transient store failure.
func StoreUnavailable(cause error) error {
	return &DomainError{
		Code:    ErrCodeStoreUnavailable,
		Message: ErrStoreUnavailable.Message,
		Err:     cause,
	}
}

// IsRetryable reports whether err is worth retrying. Only store
// unavailability qualifies; every other domain error is terminal.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// InsufficientStockError reports a reservation that exceeded available stock.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// Is matches ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Code returns the error code for err, or ErrCodeInternalError when err is
// not a domain error.
func Code(err error) string {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return ErrCodeInsufficientStock
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ErrCodeInternalError
}
