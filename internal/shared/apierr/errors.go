package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Error carries an HTTP status and a client-facing message. Operational
// errors were raised on purpose; anything else reaching the responder is
// coerced into a non-operational 500.
type Error struct {
	Status      int
	Message     string
	Operational bool
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil && e.cause.Error() != e.Message {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// StatusCode returns the HTTP status for the error.
func (e *Error) StatusCode() int { return e.Status }

// Stack renders the captured stack trace, if any.
func (e *Error) Stack() string {
	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	var st stackTracer
	if errors.As(e.cause, &st) {
		return fmt.Sprintf("%+v", st.StackTrace())
	}
	return ""
}

// New builds an operational error and records where it was raised.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message, Operational: true, cause: pkgerrors.New(message)}
}

// Wrap builds an operational error around cause.
func Wrap(status int, message string, cause error) *Error {
	if cause == nil {
		return New(status, message)
	}
	return &Error{Status: status, Message: message, Operational: true, cause: pkgerrors.WithStack(cause)}
}

func BadRequest(message string) *Error      { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error    { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error       { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error        { return New(http.StatusNotFound, message) }
func TooManyRequests(message string) *Error { return New(http.StatusTooManyRequests, message) }

func Internal(message string, cause error) *Error {
	return Wrap(http.StatusInternalServerError, message, cause)
}

// From coerces any error into an *Error. Unknown errors become a 500
// carrying the original message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
		cause:   pkgerrors.WithStack(err),
	}
}
