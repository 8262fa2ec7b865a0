package provider

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

// ErrNotFound is returned on HTTP 404. Callers decide whether a missing
// resource is a failure.
var ErrNotFound = errors.New("not found")

// StatusError carries the provider and HTTP status of a failed call. It
// unwraps to one of the domain sentinels or ErrNotFound.
type StatusError struct {
	Provider   string
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Operation, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s %s: http %d: %v: %s", e.Provider, e.Operation, e.StatusCode, e.Err, e.Body)
	}
	return fmt.Sprintf("%s %s: http %d: %v", e.Provider, e.Operation, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// sentinelForStatus maps an HTTP status to the error it unwraps to.
func sentinelForStatus(code int) error {
	switch {
	case code == 429:
		return domain.ErrRateLimited
	case code == 401 || code == 403:
		return domain.ErrAuthFailure
	case code == 404:
		return ErrNotFound
	case code == 408 || code == 504:
		return domain.ErrTimeout
	default:
		return domain.ErrProviderFailure
	}
}

// transportError classifies an error returned by http.Client.Do.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrTimeout
	}
	return domain.ErrProviderFailure
}

// Kind returns a short label for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrAuthFailure):
		return "auth"
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrParseFailure):
		return "parse"
	case errors.Is(err, domain.ErrInvalidImage):
		return "invalid_image"
	case errors.Is(err, domain.ErrNoTextDetected):
		return "no_text"
	default:
		return "provider"
	}
}
