package errors

import (
	"errors"
	"fmt"
	"strings"
)

// DynError defines the base interface for all dynapi errors
type DynError interface {
	error
	ErrorCode() ErrorCode
	Context() map[string]any
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the type of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Definition errors
	TypeResolutionErrorCode
	DuplicateFieldErrorCode
	DuplicateMethodErrorCode
	DuplicateTypeErrorCode
	CompilationErrorCode
	InvalidDescriptorErrorCode

	// Lookup errors
	MethodNotFoundErrorCode
	FieldNotFoundErrorCode

	// Lifecycle errors
	MaterializationErrorCode
	AlreadyMaterializedErrorCode

	// Runtime errors
	DispatchErrorCode
	BindingErrorCode
	ConfigurationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case TypeResolutionErrorCode:
		return "TypeResolutionFailure"
	case DuplicateFieldErrorCode:
		return "DuplicateField"
	case DuplicateMethodErrorCode:
		return "DuplicateMethod"
	case DuplicateTypeErrorCode:
		return "DuplicateType"
	case CompilationErrorCode:
		return "CompilationFailure"
	case InvalidDescriptorErrorCode:
		return "InvalidDescriptor"
	case MethodNotFoundErrorCode:
		return "MethodNotFound"
	case FieldNotFoundErrorCode:
		return "FieldNotFound"
	case MaterializationErrorCode:
		return "MaterializationFailure"
	case AlreadyMaterializedErrorCode:
		return "AlreadyMaterialized"
	case DispatchErrorCode:
		return "DispatchFailure"
	case BindingErrorCode:
		return "BindingFailure"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	default:
		return "UnknownError"
	}
}

// Parent returns the broader category a code belongs to.
// AlreadyMaterialized is reported as a MaterializationFailure.
func (e ErrorCode) Parent() ErrorCode {
	if e == AlreadyMaterializedErrorCode {
		return MaterializationErrorCode
	}
	return e
}

// BaseError is the concrete DynError. Code decides errors.Is matching and
// Message is the human part; Cause, ContextData and Hints are optional.
type BaseError struct {
	Code        ErrorCode
	Message     string
	Cause       error
	ContextData map[string]any
	Hints       []string
}

// Error renders "<Code>: <message>[: <cause>]"
func (e *BaseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *BaseError) ErrorCode() ErrorCode { return e.Code }

// Context never returns nil
func (e *BaseError) Context() map[string]any {
	if e.ContextData == nil {
		return map[string]any{}
	}
	return e.ContextData
}

func (e *BaseError) Suggestions() []string { return e.Hints }

func (e *BaseError) Unwrap() error { return e.Cause }

// Is matches another *BaseError by code, so sentinels created with New work
// with errors.Is. A MaterializationFailure sentinel also matches AlreadyMaterialized.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return t.Code == e.Code || t.Code == e.Code.Parent()
}

// WithCause sets the wrapped error
func (e *BaseError) WithCause(cause error) *BaseError {
	e.Cause = cause
	return e
}

// WithContext records one key shown by the diagnostics reporter
func (e *BaseError) WithContext(key string, value any) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]any)
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion appends a hint on how to fix the error
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// New returns an error with code and message and nothing else
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

// Newf is New with a format string
func Newf(code ErrorCode, format string, args ...any) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap returns an error with code and message caused by cause
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return New(code, message).WithCause(cause)
}

// Wrapf is Wrap with a format string
func Wrapf(code ErrorCode, cause error, format string, args ...any) *BaseError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// CodeOf returns the code of the first DynError in err's chain
func CodeOf(err error) ErrorCode {
	var de DynError
	if errors.As(err, &de) {
		return de.ErrorCode()
	}
	return UnknownErrorCode
}

// HasCode reports whether err, anything it wraps, or any error joined into
// it carries code or a child of code
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if de, ok := err.(DynError); ok {
		if de.ErrorCode() == code || de.ErrorCode().Parent() == code {
			return true
		}
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if HasCode(e, code) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return HasCode(u.Unwrap(), code)
	}
	return false
}
