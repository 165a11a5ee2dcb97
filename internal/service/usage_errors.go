package service

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when no panel client matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// ValidationError rejects a usage query before any request is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransportError covers a failed request or a non-2xx response from the usage endpoint.
// StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("usage endpoint returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("usage endpoint request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is a 2xx response whose body is not a usage document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decoding usage response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
