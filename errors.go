package pozeclient

import (
	"errors"
	"fmt"
)

// Error type constants classify every failure the client can surface.
const (
	ErrorTypeNetwork    = "Network"
	ErrorTypeHTTP       = "HTTP"
	ErrorTypeAuth       = "Auth"
	ErrorTypeValidation = "Validation"
	ErrorTypeNoData     = "NoData"
)

// Sentinel errors for common failure scenarios
var (
	// ErrNotAuthenticated is returned by operations that require a session
	// while the store is anonymous.
	ErrNotAuthenticated = errors.New("pozeclient: not authenticated")

	// ErrNoData is returned when a 2xx response carried an unexpectedly
	// empty payload.
	ErrNoData = errors.New("pozeclient: no data received")

	// ErrQueryDisabled is returned by Refetch on a disabled subscription.
	ErrQueryDisabled = errors.New("pozeclient: query disabled")
)

// Error is the typed failure shape shared by the transport client and the
// cache coordinator.
type Error struct {
	Type    string
	Message string
	Status  int
	Cause   error
}

func newError(errorType, message string, status int, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Status:  status,
		Cause:   cause,
	}
}

// Err converts a failed Result into its typed error, nil when successful.
func (r Result) Err() error { return ResultError(r) }

// ResultError converts a failed Result into the typed error the coordinator
// consumes. It returns nil for a successful result.
func ResultError(r Result) error {
	if r.OK() {
		return nil
	}
	switch {
	case r.Status == 0:
		return newError(ErrorTypeNetwork, r.Error, 0, nil)
	case r.Status == 401:
		return newError(ErrorTypeAuth, r.Error, 401, nil)
	default:
		return newError(ErrorTypeHTTP, r.Error, r.Status, nil)
	}
}

// Error implements error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// IsAuthError reports whether err is a 401 classification. Auth errors are
// a hard stop for retry logic: once the session is torn down nothing is
// gained by retrying against the invalid token.
func IsAuthError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrorTypeAuth
}

// IsTransient reports whether err might succeed on retry: network-level
// failures and 5xx responses qualify, 4xx (except 429) and auth errors do
// not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	case ErrorTypeHTTP:
		return e.Status >= 500 || e.Status == 429
	default:
		return false
	}
}
