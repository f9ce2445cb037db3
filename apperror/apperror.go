// Package apperror defines the structured error kinds returned by the
// booking core. Callers map a Kind to a user-visible message or status code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind string

const (
	KindNotFound                  Kind = "not_found"
	KindNotAuthorized             Kind = "not_authorized"
	KindInvalidTransition         Kind = "invalid_transition"
	KindSlotUnavailable           Kind = "slot_unavailable"
	KindProviderUnavailable       Kind = "provider_unavailable"
	KindInvalidAvailabilityConfig Kind = "invalid_availability_config"
	KindInvalidInput              Kind = "invalid_input"
	KindConflict                  Kind = "conflict"
	KindAlreadyExists             Kind = "already_exists"
	KindInternal                  Kind = "internal"
)

// Error is the error type carried through services and repositories.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg = e.Message
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of message or op.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == ""
}

// Sentinels for errors.Is.
var (
	ErrNotFound                  = &Error{Kind: KindNotFound}
	ErrNotAuthorized             = &Error{Kind: KindNotAuthorized}
	ErrInvalidTransition         = &Error{Kind: KindInvalidTransition}
	ErrSlotUnavailable           = &Error{Kind: KindSlotUnavailable}
	ErrProviderUnavailable       = &Error{Kind: KindProviderUnavailable}
	ErrInvalidAvailabilityConfig = &Error{Kind: KindInvalidAvailabilityConfig}
	ErrInvalidInput              = &Error{Kind: KindInvalidInput}
	ErrConflict                  = &Error{Kind: KindConflict}
	ErrAlreadyExists             = &Error{Kind: KindAlreadyExists}
)

// New returns an error of the given kind.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func NotFound(op, format string, args ...any) *Error {
	return New(KindNotFound, op, format, args...)
}

func NotAuthorized(op, format string, args ...any) *Error {
	return New(KindNotAuthorized, op, format, args...)
}

func InvalidTransition(op, format string, args ...any) *Error {
	return New(KindInvalidTransition, op, format, args...)
}

func InvalidInput(op, format string, args ...any) *Error {
	return New(KindInvalidInput, op, format, args...)
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindNotAuthorized:
		return http.StatusForbidden
	case KindInvalidTransition, KindConflict, KindAlreadyExists, KindSlotUnavailable, KindProviderUnavailable:
		return http.StatusConflict
	case KindInvalidAvailabilityConfig:
		return http.StatusUnprocessableEntity
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
