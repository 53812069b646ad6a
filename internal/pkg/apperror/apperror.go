// Package apperror is the error taxonomy shared by the payment core and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindGateway    Kind = "GATEWAY"
	KindConflict   Kind = "CONFLICT"
	KindIneligible Kind = "INELIGIBLE"
	KindNotFound   Kind = "NOT_FOUND"
	KindForbidden  Kind = "FORBIDDEN"
	KindInternal   Kind = "INTERNAL"
)

type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
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

func Validation(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

// Ineligible marks a business-rule refusal: the request was well formed but not allowed now.
func Ineligible(code, message string) *AppError {
	return &AppError{Kind: KindIneligible, Code: code, Message: message}
}

func NotFound(code, message string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message, Err: err}
}

func Forbidden(code, message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: code, Message: message}
}

func Conflict(code, message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message, Err: err}
}

func Gateway(message string, err error) *AppError {
	return &AppError{Kind: KindGateway, Code: "GATEWAY_ERROR", Message: message, Err: err}
}

func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: message, Err: err}
}

// KindOf returns KindInternal for anything that is not an *AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
