package domain

import (
	"context"
	"errors"
)

var (
	// ErrInvalidImage is returned when the input cannot be decoded or re-encoded.
	ErrInvalidImage = errors.New("invalid image")

	// ErrNoTextDetected is returned when every provider returned an empty ingredient list.
	ErrNoTextDetected = errors.New("no text detected")

	// ErrRateLimited is returned on HTTP 429 or while a provider's Retry-After window is open.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthFailure is returned on HTTP 401/403.
	ErrAuthFailure = errors.New("authentication failed")

	// ErrParseFailure is returned when a provider response cannot be interpreted.
	ErrParseFailure = errors.New("response parse failure")

	// ErrTimeout is returned when a provider call exceeds its deadline.
	ErrTimeout = errors.New("provider timeout")

	// ErrProviderFailure covers transport errors and unexpected HTTP statuses.
	ErrProviderFailure = errors.New("provider failure")
)

// UserMessage turns a pipeline failure into a single human-readable message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidImage):
		return "The photo could not be read. Please try another image."
	case errors.Is(err, ErrNoTextDetected):
		return "No ingredient list was found in the photo."
	case errors.Is(err, ErrRateLimited):
		return "The text recognition service is busy. Please try again shortly."
	case errors.Is(err, ErrAuthFailure):
		return "The text recognition service rejected our credentials."
	case errors.Is(err, ErrParseFailure):
		return "The ingredient list could not be understood. Please retake the photo."
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "The scan took too long. Please try again."
	case errors.Is(err, context.Canceled):
		return "The scan was cancelled."
	default:
		return "Something went wrong while scanning. Please try again."
	}
}
