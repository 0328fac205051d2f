package utils

import (
	"errors"
	"net/http"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// AppError is an expected failure that maps onto an HTTP status and a client-safe message.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Status returns the HTTP status for the error kind.
// Conflicts answer 400, the duplicate-purchase contract clients already rely on.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func ValidationError(msg, details string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg, Details: details}
}

func Unauthenticated(msg string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err, KindInternal for anything that is not an *AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
