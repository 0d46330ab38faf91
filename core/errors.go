package core

import "github.com/pkg/errors"

// FieldError reports a validation failure on one field of a payload.
type FieldError struct {
	Field string
	Error string
}

// ValidationError wraps a request error with optional per-field details.
// The API error handler renders Fields as a JSON object when present.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks an integrity error the process should not survive.
type shutdown struct {
	message string
}

// NewShutdownError returns an error that signals a graceful shutdown.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether err, at any point in its chain, asks for a
// graceful shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
