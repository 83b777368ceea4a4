// Package errors provides structured error handling for scand operations.
// It defines error codes, error types, and utilities for creating and
// inspecting errors raised during scan admission, execution, and delivery.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeNotFound      ErrorCode = "NOT_FOUND"

	// Admission errors.
	CodeTargetInvalid  ErrorCode = "TARGET_INVALID"
	CodeProfileUnknown ErrorCode = "PROFILE_UNKNOWN"
	CodeDuplicateScan  ErrorCode = "DUPLICATE_SCAN"
	CodeCapacity       ErrorCode = "CAPACITY"

	// Engine errors.
	CodeScanFailed ErrorCode = "SCAN_FAILED"

	// Delivery errors.
	CodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"
)

// ScanError represents an error that occurred during scan admission or execution.
type ScanError struct {
	Code    ErrorCode
	Message string
	ScanID  string
	Target  string
	Cause   error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s (target: %s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// WithScanID attaches the scan identifier to the error.
func (e *ScanError) WithScanID(scanID string) *ScanError {
	e.ScanID = scanID
	return e
}

// NewScanError creates a new scan error with the specified code and message.
func NewScanError(code ErrorCode, message string) *ScanError {
	return &ScanError{Code: code, Message: message}
}

// NewScanErrorWithTarget creates a scan error for a specific target.
func NewScanErrorWithTarget(code ErrorCode, message, target string) *ScanError {
	return &ScanError{Code: code, Message: message, Target: target}
}

// WrapScanError wraps an existing error as a scan error.
func WrapScanError(code ErrorCode, message string, err error) *ScanError {
	return &ScanError{Code: code, Message: message, Cause: err}
}

// DeliveryError represents a callback delivery failure. Deliveries are
// fire-and-forget, so this error type is logged and counted but never
// propagated into the scan state machine.
type DeliveryError struct {
	Code       ErrorCode
	Message    string
	URL        string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] %s (status: %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DeliveryError) Unwrap() error {
	return e.Cause
}

// NewDeliveryError creates a delivery error for a non-2xx callback response.
func NewDeliveryError(url string, statusCode int) *DeliveryError {
	return &DeliveryError{
		Code:       CodeDeliveryFailed,
		Message:    "callback returned non-success status",
		URL:        url,
		StatusCode: statusCode,
	}
}

// WrapDeliveryError wraps a transport-level callback failure.
func WrapDeliveryError(url string, err error) *DeliveryError {
	return &DeliveryError{
		Code:    CodeDeliveryFailed,
		Message: "callback request failed",
		URL:     url,
		Cause:   err,
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{Code: code, Message: message, Field: field, Value: value}
}

// Utility functions for common error operations.

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error if it has one.
func GetCode(err error) ErrorCode {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Code
	}
	var deliveryErr *DeliveryError
	if errors.As(err, &deliveryErr) {
		return deliveryErr.Code
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Code
	}
	return CodeUnknown
}

// IsNotFound reports whether an error indicates a missing scan entry.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsAdmission reports whether an error was raised at scan admission,
// before any registry entry was created.
func IsAdmission(err error) bool {
	switch GetCode(err) {
	case CodeValidation, CodeTargetInvalid, CodeProfileUnknown, CodeDuplicateScan, CodeCapacity:
		return true
	default:
		return false
	}
}

// Common error creation functions.

// ErrInvalidTarget creates an error for invalid scan targets.
func ErrInvalidTarget(target string) *ScanError {
	return NewScanErrorWithTarget(CodeTargetInvalid, "invalid target format", target)
}

// ErrUnknownScanType creates an error for unknown scan types.
func ErrUnknownScanType(scanType string) *ScanError {
	return NewScanError(CodeProfileUnknown, fmt.Sprintf("unknown scan_type: %s", scanType))
}

// ErrDuplicateScan creates an error for a scan_id that is already active.
func ErrDuplicateScan(scanID string) *ScanError {
	return NewScanError(CodeDuplicateScan, "scan with this scan_id is already active").WithScanID(scanID)
}

// ErrScanNotFound creates an error for an unknown scan_id.
func ErrScanNotFound(scanID string) *ScanError {
	return NewScanError(CodeNotFound, "scan not found").WithScanID(scanID)
}

// ErrCapacityExceeded creates an error raised when no scan slot is available.
func ErrCapacityExceeded() *ScanError {
	return NewScanError(CodeCapacity, "maximum number of concurrent scans reached")
}
