// Package apperr defines the error kinds shared by services and handlers.
// Services return errors wrapping one of the kind sentinels together with a
// message naming the violated invariant; handlers translate the kind to an
// HTTP status with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Wrap them with New/Newf so errors.Is(err, kind) works.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

// New returns an error of the given kind with a human-readable message.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Newf returns an error of the given kind with a formatted message.
func Newf(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// NotFound reports whether err is of kind NotFound.
func NotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Conflict reports whether err is of kind Conflict.
func Conflict(err error) bool { return errors.Is(err, ErrConflict) }

// Forbidden reports whether err is of kind Forbidden.
func Forbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// InvalidInput reports whether err is of kind InvalidInput.
func InvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
