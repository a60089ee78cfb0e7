package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrMissingRuntime indicates the local model runtime is not reachable.
// Retrying will not resolve it.
var ErrMissingRuntime = errors.New("local model runtime is not available")

// BackendError wraps a failed backend call with the HTTP status that
// caused it, when one is known.
type BackendError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Transient reports whether the error is expected to be retry-resolvable:
// request timeout, rate limiting, or a server-side failure.
func (e *BackendError) Transient() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	}
	return false
}

// IsTransient classifies an error from a backend call. Network timeouts
// count as transient alongside the retryable HTTP statuses; everything
// else (auth failures, malformed requests, missing runtimes) is terminal.
func IsTransient(err error) bool {
	var be *BackendError
	if errors.As(err, &be) && be.Transient() {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
