package adapters

import (
	"fmt"
	"net/http"
)

// Response lets a dispatcher choose the status code. Methods returning it
// should be declared with an "any" return type.
type Response struct {
	StatusCode int `json:"-"`
	Body       any `json:"body,omitempty"`
}

// NewResponse creates a Response with the status code and body
func NewResponse(statusCode int, body any) *Response {
	return &Response{StatusCode: statusCode, Body: body}
}

// OK creates a 200 response
func OK(body any) *Response {
	return NewResponse(http.StatusOK, body)
}

// Created creates a 201 response
func Created(body any) *Response {
	return NewResponse(http.StatusCreated, body)
}

// NoContent creates a 204 response
func NoContent() *Response {
	return NewResponse(http.StatusNoContent, nil)
}

// HTTPError is a dispatcher error carrying its own status code
type HTTPError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates an HTTPError
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// ErrNotFound creates a 404 error
func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// ErrBadRequest creates a 400 error
func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

// ErrUnprocessableEntity creates a 422 error with validation details
func ErrUnprocessableEntity(message string, details any) *HTTPError {
	return &HTTPError{StatusCode: http.StatusUnprocessableEntity, Message: message, Details: details}
}
