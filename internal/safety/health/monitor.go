package health

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/taj0207/IngredientCheck/internal/infra/provider"
)

// CheckInterval is the minimum time between two real checks.
const CheckInterval = 10 * time.Second

// Pinger is a dependency that can be probed, such as the redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type component struct {
	kind     string
	name     string
	provider provider.Provider
	pinger   Pinger
}

// Monitor aggregates health status from the registered components.
type Monitor struct {
	components map[string]component
	clock      clockwork.Clock
	lastCheck  time.Time
	lastReport *HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor. A nil clock uses the wall clock.
func NewMonitor(clock clockwork.Clock) *Monitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Monitor{
		components: make(map[string]component),
		clock:      clock,
	}
}

// AddProvider registers an upstream provider under kind ("ocr", "hazard").
func (m *Monitor) AddProvider(kind string, p provider.Provider) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[kind+"/"+p.GetName()] = component{kind: kind, provider: p}
	m.lastReport = nil
}

// AddPinger registers a dependency that is probed on each check.
func (m *Monitor) AddPinger(kind, name string, p Pinger) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[kind+"/"+name] = component{kind: kind, name: name, pinger: p}
	m.lastReport = nil
}

// CheckHealth returns the current report. Results are reused for
// CheckInterval so health probes do not hammer redis.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if m.lastReport != nil && now.Sub(m.lastCheck) < CheckInterval {
		return *m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		CheckedAt:    now.UTC(),
		Components:   make(map[string]ComponentHealth, len(m.components)),
	}

	for key, c := range m.components {
		var h ComponentHealth
		if c.provider != nil {
			h = providerHealth(c.kind, c.provider)
		} else {
			h = m.pingHealth(ctx, c)
		}
		report.Components[key] = h
		report.SystemStatus = Worst(report.SystemStatus, h.Status)
	}

	m.lastCheck = now
	m.lastReport = &report
	return report
}

func providerHealth(kind string, p provider.Provider) ComponentHealth {
	h := p.GetHealth()
	return ComponentHealth{
		Name:      p.GetName(),
		Kind:      kind,
		Status:    Evaluate(h),
		Available: p.IsAvailable(),
		ErrorRate: h.ErrorRate,
		Latency:   h.Latency,
		Provider:  h.MonitorStats,
	}
}

func (m *Monitor) pingHealth(ctx context.Context, c component) ComponentHealth {
	h := ComponentHealth{Name: c.name, Kind: c.kind, Status: StatusHealthy, Available: true}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := m.clock.Now()
	if err := c.pinger.Ping(ctx); err != nil {
		// The pipeline keeps working on the local cache alone.
		h.Status = StatusDegraded
		h.Available = false
		h.Error = err.Error()
		return h
	}
	h.Latency = m.clock.Since(start)
	return h
}
