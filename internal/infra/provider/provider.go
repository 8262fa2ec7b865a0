// Package provider implements the HTTP transport shared by every upstream
// service client (vision OCR and hazard data).
//
// This package contains:
//   - Provider interface: core abstraction for an upstream endpoint
//   - HTTPProvider: JSON over HTTP with status classification
//   - Monitor: latency and throttle tracking per provider
//   - StatusError / Kind: typed provider failures
package provider

import (
	"net/url"
	"time"
)

// Operation describes one HTTP call against a provider.
type Operation struct {
	// Name identifies the operation in logs and metrics (e.g. "chat.completions").
	Name string

	// Method is the HTTP method; defaults to GET, or POST when Body is set.
	Method string

	// Path is appended to the provider endpoint.
	Path string

	// Query parameters, if any.
	Query url.Values

	// Body is JSON-encoded when non-nil.
	Body any

	// Headers are set on the request in addition to the provider defaults.
	Headers map[string]string
}

// Provider defines the core interface for an upstream endpoint.
type Provider interface {
	// GetName returns provider identifier (e.g. "openai", "pubchem")
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// IsAvailable checks if the provider is healthy enough to use
	IsAvailable() bool

	// Close cleans up resources
	Close() error
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
	MonitorStats  *MonitorStats `json:"monitor_stats,omitempty"`
}
