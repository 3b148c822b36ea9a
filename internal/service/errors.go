package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the transport layer. They are compared with
// errors.Is; the detail of an *Error is what the client gets to read.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
)

// Error pairs a stable kind with a human readable detail.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// errInvalidCredentials is shared by every login and token failure so that
// callers cannot tell which factor was wrong.
var errInvalidCredentials = &Error{Kind: ErrInvalidCredentials, Detail: "Could not validate credentials"}
