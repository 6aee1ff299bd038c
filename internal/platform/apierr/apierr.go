package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP-equivalent status through the service layers.
// Handlers translate it at the edge; everything below stays transport-agnostic.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Validation marks malformed input to a core operation. Never retried.
func Validation(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

// NotFound marks a reference that does not exist in the expected organization scope.
func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, err)
}

// Dependency marks an external completion/vector/storage failure.
func Dependency(code string, err error) *Error {
	return New(http.StatusBadGateway, code, err)
}

func Validationf(code, format string, args ...any) *Error {
	return Validation(code, fmt.Errorf(format, args...))
}

func NotFoundf(code, format string, args ...any) *Error {
	return NotFound(code, fmt.Errorf(format, args...))
}

func Dependencyf(code, format string, args ...any) *Error {
	return Dependency(code, fmt.Errorf(format, args...))
}

func statusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func IsValidation(err error) bool { return statusOf(err) == http.StatusBadRequest }
func IsNotFound(err error) bool   { return statusOf(err) == http.StatusNotFound }
func IsDependency(err error) bool { return statusOf(err) == http.StatusBadGateway }

// As unwraps err to the typed error when one is in the chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// StatusFor resolves the HTTP status for any error, defaulting to 500.
func StatusFor(err error) int {
	if s := statusOf(err); s != 0 {
		return s
	}
	return http.StatusInternalServerError
}
