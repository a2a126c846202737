package apperrors

import "fmt"

// ParseError is returned when an ID specification cannot be parsed.
// It is fatal to the run and is surfaced before any network activity.
type ParseError struct {
	Token  string
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid id token %q: %s", e.Token, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError.
func NewParseError(token, reason string) *ParseError {
	return &ParseError{
		Token:  token,
		Reason: reason,
	}
}

// FetchError represents a transient failure talking to the remote API:
// a transport error or an unexpected HTTP status.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *FetchError) Is(target error) bool {
	_, ok := target.(*FetchError)
	return ok
}

// NewStatusError creates a FetchError for a non-2xx response.
func NewStatusError(url string, statusCode int) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
	}
}

// NewTransportError creates a FetchError wrapping a transport failure.
func NewTransportError(url string, err error) *FetchError {
	return &FetchError{
		URL: url,
		Err: err,
	}
}

// ValidationError is returned when a response was received but does not
// match the expected record shape.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid response field %s: %s", e.Field, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: reason,
	}
}

// ExhaustedError is returned when every attempt to obtain a video's transcript failed.
// It is contained to that video; the run continues.
type ExhaustedError struct {
	ID       int
	Attempts int
	Last     error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("video %d: failed after %d attempts: %v", e.ID, e.Attempts, e.Last)
}

// Unwrap returns the error of the last attempt.
func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Is allows for error checking with errors.Is().
func (e *ExhaustedError) Is(target error) bool {
	_, ok := target.(*ExhaustedError)
	return ok
}

// NewExhaustedError creates a new ExhaustedError.
func NewExhaustedError(id, attempts int, last error) *ExhaustedError {
	return &ExhaustedError{
		ID:       id,
		Attempts: attempts,
		Last:     last,
	}
}
