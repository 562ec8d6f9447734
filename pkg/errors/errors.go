// Package errors defines AppError, the error type the API layer renders, and the mapping from
// plain errors to it.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Public error codes
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnprocessable   = "RECONCILIATION_FAILED"
	CodeNotFound        = "RESOURCE_NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInvalidState    = "INVALID_STATE"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeBadRequest      = "BAD_REQUEST"
	CodeTimeout         = "TIMEOUT"
)

// AppError is an error that knows its HTTP status and public error code.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap attaches the underlying cause
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

func NewAppError(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// ErrValidation is a 400 for a request that fails field validation
func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidationError, message, http.StatusBadRequest)
}

// ErrValidationWithFields is ErrValidation with a field -> message map
func ErrValidationWithFields(message string, fields map[string]string) *AppError {
	appErr := ErrValidation(message)
	appErr.Details = fields
	return appErr
}

// ErrUnprocessable reports a well-formed document whose line items fail reconciliation.
// Details are keyed by line field, e.g. "lines[RING-01].weight".
func ErrUnprocessable(message string, fields map[string]string) *AppError {
	appErr := NewAppError(CodeUnprocessable, message, http.StatusUnprocessableEntity)
	appErr.Details = fields
	return appErr
}

func ErrNotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, resource+" not found", http.StatusNotFound)
}

func ErrConflict(message string) *AppError {
	return NewAppError(CodeConflict, message, http.StatusConflict)
}

// ErrInvalidState is returned when a document cannot move to the requested status.
func ErrInvalidState(message string) *AppError {
	return NewAppError(CodeInvalidState, message, http.StatusConflict)
}

// ErrInternal is a 500; an empty message gets a generic one
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeInternalError, message, http.StatusInternalServerError)
}

func ErrBadRequest(message string) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest)
}

func ErrTimeout(operation string) *AppError {
	return NewAppError(CodeTimeout, operation+" timed out", http.StatusGatewayTimeout)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type messageRule struct {
	needles []string
	build   func(msg string) *AppError
}

// Checked in order; the first rule with a matching needle wins
var messageRules = []messageRule{
	{[]string{"not found"}, func(string) *AppError { return ErrNotFound("resource") }},
	{[]string{"already exists", "duplicate"}, ErrConflict},
	{[]string{"cannot transition", "status"}, ErrInvalidState},
	{[]string{"invalid", "required"}, ErrValidation},
	{[]string{"timeout", "deadline exceeded"}, func(string) *AppError { return ErrTimeout("operation") }},
}

// MapDomainError maps domain error messages to AppErrors by pattern.
// Callers with sentinel errors should match those first and use this as the fallback.
func MapDomainError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.build(msg).Wrap(err)
			}
		}
	}
	return ErrInternal("").Wrap(err)
}
