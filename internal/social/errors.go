package social

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("resource conflict")
	ErrForbidden    = errors.New("forbidden")
)

// Error is a classified failure carrying the message shown to API clients.
// errors.Is matches it against its Kind.
type Error struct {
	Kind    error
	Message string
	Details any
}

func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Details)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

func invalid(msg string, details any) error {
	return &Error{Kind: ErrInvalidInput, Message: msg, Details: details}
}

func conflict(msg string, details any) error {
	return &Error{Kind: ErrConflict, Message: msg, Details: details}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

// wrapNotFound gives a bare ErrNotFound from a store a client-facing message.
func wrapNotFound(err error, msg string) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return notFound(msg)
	}
	return err
}
