package services

import (
	"errors"
	"net/http"
)

// ErrorKind classifies failures that are reported to the caller.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindForbidden
	KindInsufficientStock
	KindEmptyCart
	KindAuthInvalid
	KindAuthDuplicate
	KindMalformed
)

// Error is a caller-facing failure carrying a safe message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Status maps the kind onto an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindAuthInvalid:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func ValidationError(msg string) *Error { return newError(KindValidation, msg) }
func NotFoundError(msg string) *Error { return newError(KindNotFound, msg) }
func ForbiddenError(msg string) *Error { return newError(KindForbidden, msg) }
func InsufficientStockError(msg string) *Error { return newError(KindInsufficientStock, msg) }
func EmptyCartError() *Error { return newError(KindEmptyCart, "Your cart is empty") }
func MalformedError(msg string) *Error { return newError(KindMalformed, msg) }

// IsKind reports whether err is a service Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
