package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies application errors so handlers can map them to HTTP
// statuses without inspecting message text.
type ErrorCode string

const (
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeDuplicateSKU           ErrorCode = "DUPLICATE_SKU"
	CodeInvalidStateTransition ErrorCode = "INVALID_STATE_TRANSITION"
	CodePreconditionFailed     ErrorCode = "PRECONDITION_FAILED"
	CodeValidation             ErrorCode = "VALIDATION_ERROR"
)

// AppError is a typed business error surfaced synchronously to the HTTP
// layer. The core never retries or logs these; that is a handler concern.
type AppError struct {
	Code    ErrorCode
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewNotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewDuplicateSKU(sku string) *AppError {
	return &AppError{Code: CodeDuplicateSKU, Message: fmt.Sprintf("an active item with SKU %q already exists for this company", sku)}
}

func NewInvalidStateTransition(entity, current, attempted string) *AppError {
	return &AppError{
		Code:    CodeInvalidStateTransition,
		Message: fmt.Sprintf("%s cannot transition from %q to %q", entity, current, attempted),
	}
}

func NewPreconditionFailed(message string) *AppError {
	return &AppError{Code: CodePreconditionFailed, Message: message}
}

func NewValidation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// AsAppError unwraps err looking for an AppError.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus maps an error to the status code handlers should respond with.
func HTTPStatus(err error) int {
	appErr, ok := AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateSKU, CodeInvalidStateTransition, CodePreconditionFailed, CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
