// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-counter.

package api

import "fmt"

// Common errors used across the module.
var (
	ErrWouldBlock      = fmt.Errorf("operation would block")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotSupported    = fmt.Errorf("operation not supported")
	ErrAlreadyExists   = fmt.Errorf("resource already exists")
	ErrClosed          = fmt.Errorf("resource is closed")
)

// ErrorCode represents specific error conditions in the module.
type ErrorCode int

const (
	ErrCodeInternal ErrorCode = iota + 1
	ErrCodeInvalidArgument
	ErrCodeAlreadyExists
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Context) != 0 {
		msg = fmt.Sprintf("%s (context: %+v)", msg, e.Context)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Wrap sets the underlying cause.
func (e *Error) Wrap(cause error) *Error {
	e.Cause = cause
	return e
}
