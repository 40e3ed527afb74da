package verify

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout is the cancellation cause attached to a request whose deadline
// expired before the server answered.
var ErrTimeout = errors.New("verification timed out")

// StatusError indicates the server answered with a non-success status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// TransportError indicates the request never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("verification request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// InvalidResponseError indicates a success status with a body that does not
// match the response contract.
type InvalidResponseError struct {
	Body []byte
	Err  error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid verification response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// FailureKind classifies a failed verification for display.
type FailureKind int

const (
	FailureOther FailureKind = iota
	FailureTimeout
)

// Failure is the single normalized failure outcome.
type Failure struct {
	Kind FailureKind
	Err  error
}

// Timeout reports whether the failure was a deadline expiry.
func (f Failure) Timeout() bool { return f.Kind == FailureTimeout }

// Classify normalizes any verification error into a Failure. ctx is the
// request context; its cause distinguishes our own deadline from other
// cancellations.
func Classify(ctx context.Context, err error) Failure {
	if IsTimeout(ctx, err) {
		return Failure{Kind: FailureTimeout, Err: err}
	}
	return Failure{Kind: FailureOther, Err: err}
}

// IsTimeout reports whether err stems from the request deadline.
func IsTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}
	if ctx != nil && errors.Is(context.Cause(ctx), ErrTimeout) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
