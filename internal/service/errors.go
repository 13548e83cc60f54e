// Package service holds the booking core: slot conflict checking, the
// payment simulator, the booking transaction engine and the lifecycle
// manager, plus the account rules that protect the last admin.  It talks
// to storage only through the ports declared in store.go.
package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Handlers map each kind to one HTTP status; callers test
// for a kind with errors.Is.
var (
	ErrValidation      = errors.New("validation_error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not_found")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal_fault")
)

// Error is a categorised, human readable failure.  Existing is set on
// slot conflicts and names the interval that is already taken.
type Error struct {
	Kind     error
	Msg      string
	Existing *Interval
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...any) error { return newError(ErrValidation, format, args...) }

func notFoundf(format string, args ...any) error { return newError(ErrNotFound, format, args...) }

func forbiddenf(format string, args ...any) error { return newError(ErrForbidden, format, args...) }

// internal wraps an unexpected fault.  The cause is kept for logging and
// never shown to callers.
func internal(op string, err error) error {
	return &Error{Kind: ErrInternal, Msg: op + ": " + err.Error()}
}

// KindOf returns the kind of err, or ErrInternal for anything that is not
// a *Error.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind != nil {
		return e.Kind
	}
	return ErrInternal
}
