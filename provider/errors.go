package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for completion calls.
var (
	// ErrUnknownProvider indicates the requested backend is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnavailable indicates the completion service could not be reached
	// or answered with a server error.
	ErrUnavailable = errors.New("completion service unavailable")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidRequest indicates the backend rejected the request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("request timed out")

	// ErrContextTooLong indicates the prompt exceeds the model's context
	// window.
	ErrContextTooLong = errors.New("prompt exceeds model context window")

	// ErrMalformedEnvelope indicates the response body did not have the
	// expected completion envelope shape (e.g. a missing choices array).
	ErrMalformedEnvelope = errors.New("malformed completion envelope")

	// ErrMissingCredentials indicates no API key was configured.
	ErrMissingCredentials = errors.New("missing API credentials")
)

// Error wraps completion errors with context.
type Error struct {
	Provider  string // Backend name ("openai", ...)
	Op        string // Operation that failed ("complete")
	Err       error  // Underlying error
	Retryable bool   // Whether the error is likely transient
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a wrapped completion error.
func NewError(provider, op string, err error, retryable bool) *Error {
	return &Error{
		Provider:  provider,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable reports whether an error is likely transient and worth
// retrying with backoff.
func IsRetryable(err error) bool {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}

	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}
