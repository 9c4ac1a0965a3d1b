package api

import (
	"errors"
	"fmt"
)

// ValidationError is a request the service rejected (4xx)
type ValidationError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: rejected with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: rejected with status %d: %s", e.Op, e.StatusCode, e.Message)
}

// TransportError is a network failure, a server fault (5xx) or an unreadable response
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a *ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransport reports whether err is (or wraps) a *TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
