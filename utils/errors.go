package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindNotFound        ErrorKind = "NotFound"
	KindConflict        ErrorKind = "Conflict"
	KindValidation      ErrorKind = "ValidationError"
	KindUnauthorized    ErrorKind = "Unauthorized"
	KindForbidden       ErrorKind = "Forbidden"
	KindDeliveryFailure ErrorKind = "DeliveryFailure"
	KindInternal        ErrorKind = "Internal"
)

// AppError carries an error kind that controllers translate into a status code.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *AppError {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func DeliveryFailure(err error, format string, args ...any) *AppError {
	return &AppError{Kind: KindDeliveryFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

func Internal(err error, message string) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err; anything that is not an *AppError is internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
