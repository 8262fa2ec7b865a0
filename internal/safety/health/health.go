// Package health reports the state of the upstream providers and the
// shared cache.
package health

import (
	"time"

	"github.com/taj0207/IngredientCheck/internal/infra/provider"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// rank orders statuses so the worst one wins an aggregation.
func (s SystemStatus) rank() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// Worst returns the most severe of the given statuses.
func Worst(statuses ...SystemStatus) SystemStatus {
	worst := StatusHealthy
	for _, s := range statuses {
		if s.rank() > worst.rank() {
			worst = s
		}
	}
	return worst
}

// ComponentHealth describes one dependency: an OCR or hazard provider, or
// the redis cache.
type ComponentHealth struct {
	Name      string                 `json:"name"`
	Kind      string                 `json:"kind"`
	Status    SystemStatus           `json:"status"`
	Available bool                   `json:"available"`
	ErrorRate float64                `json:"error_rate"`
	Latency   time.Duration          `json:"latency"`
	Provider  *provider.MonitorStats `json:"provider,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus               `json:"system_status"`
	CheckedAt    time.Time                  `json:"checked_at"`
	Components   map[string]ComponentHealth `json:"components"`
}

// Evaluate maps a provider's health to a component status. A blocked
// provider is critical; throttling, slow responses or a high error rate
// are degradation.
func Evaluate(h provider.HealthStatus) SystemStatus {
	if h.MonitorStats != nil {
		switch h.MonitorStats.Status {
		case provider.StatusBlocked:
			return StatusCritical
		case provider.StatusThrottled, provider.StatusDegraded:
			return StatusDegraded
		}
	}
	if h.ErrorRate > 0.5 {
		return StatusDegraded
	}
	return StatusHealthy
}
