package provider

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ProviderStatus represents the health state of a provider.
type ProviderStatus int

const (
	StatusHealthy   ProviderStatus = iota // Provider is working normally
	StatusDegraded                        // Provider is slow but working
	StatusThrottled                       // Provider asked us to back off
	StatusBlocked                         // Provider refused our credentials or IP
)

func (s ProviderStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusThrottled:
		return "throttled"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

func (s ProviderStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MonitorStats holds monitoring statistics for a provider.
type MonitorStats struct {
	Status            ProviderStatus `json:"status"`
	AverageLatency    time.Duration  `json:"average_latency"`
	ThrottleCount429  int            `json:"throttle_count_429"`
	ThrottleCount403  int            `json:"throttle_count_403"`
	RequestsLast1Hour int            `json:"requests_last_1h"`
	RetryAfter        time.Duration  `json:"retry_after"`
}

// Monitor tracks provider latency and throttling.
type Monitor struct {
	mu sync.RWMutex

	recentLatencies  []time.Duration
	maxLatencyWindow int

	status429Count   int
	status403Count   int
	throttlePatterns []string
	throttledUntil   time.Time
	blockedUntil     time.Time

	requestTimestamps []time.Time
	windowDuration    time.Duration

	slowResponseThreshold time.Duration
	defaultRetryAfter     time.Duration
	blockDuration         time.Duration

	clock clockwork.Clock
}

// NewMonitor creates a new monitor with default settings.
func NewMonitor() *Monitor {
	return NewMonitorWithClock(clockwork.NewRealClock())
}

// NewMonitorWithClock creates a monitor that reads time from clock.
func NewMonitorWithClock(clock clockwork.Clock) *Monitor {
	return &Monitor{
		recentLatencies:  make([]time.Duration, 0, 100),
		maxLatencyWindow: 100,
		throttlePatterns: []string{
			"rate limit exceeded",
			"rate_limit_exceeded",
			"too many requests",
			"quota exceeded",
			"server busy",
		},
		windowDuration:        time.Hour,
		slowResponseThreshold: 10 * time.Second,
		defaultRetryAfter:     30 * time.Second,
		blockDuration:         10 * time.Minute,
		clock:                 clock,
	}
}

// RecordRequest records a successful request with its latency.
func (m *Monitor) RecordRequest(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()

	m.recentLatencies = append(m.recentLatencies, latency)
	if len(m.recentLatencies) > m.maxLatencyWindow {
		m.recentLatencies = m.recentLatencies[1:]
	}

	m.requestTimestamps = append(m.requestTimestamps, now)
	cutoff := now.Add(-m.windowDuration)
	i := 0
	for i < len(m.requestTimestamps) && !m.requestTimestamps[i].After(cutoff) {
		i++
	}
	m.requestTimestamps = m.requestTimestamps[i:]
}

// RecordThrottle records a 429 or 403 response. A 429 opens a back-off
// window of Retry-After (seconds or HTTP date), or the default when the
// header is missing or unparseable.
func (m *Monitor) RecordThrottle(statusCode int, retryAfter string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	switch statusCode {
	case http.StatusTooManyRequests:
		m.status429Count++
		m.throttledUntil = now.Add(parseRetryAfter(retryAfter, now, m.defaultRetryAfter))
	case http.StatusForbidden:
		m.status403Count++
		m.blockedUntil = now.Add(m.blockDuration)
	}
}

func parseRetryAfter(v string, now time.Time, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return def
}

// DetectThrottlePattern checks if a message contains throttle patterns.
func (m *Monitor) DetectThrottlePattern(message string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lowerMsg := strings.ToLower(message)
	for _, pattern := range m.throttlePatterns {
		if strings.Contains(lowerMsg, pattern) {
			return true
		}
	}
	return false
}

// CheckProviderStatus returns the current status of the provider.
func (m *Monitor) CheckProviderStatus() ProviderStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

func (m *Monitor) statusLocked() ProviderStatus {
	now := m.clock.Now()
	if now.Before(m.blockedUntil) {
		return StatusBlocked
	}
	if now.Before(m.throttledUntil) {
		return StatusThrottled
	}
	if len(m.recentLatencies) > 10 && m.averageLatencyLocked() > m.slowResponseThreshold {
		return StatusDegraded
	}
	return StatusHealthy
}

// GetRetryAfter returns remaining time before retry is allowed.
func (m *Monitor) GetRetryAfter() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.retryAfterLocked()
}

func (m *Monitor) retryAfterLocked() time.Duration {
	until := m.throttledUntil
	if m.blockedUntil.After(until) {
		until = m.blockedUntil
	}
	if remaining := until.Sub(m.clock.Now()); remaining > 0 {
		return remaining
	}
	return 0
}

// GetAverageLatency returns the average latency of recent requests.
func (m *Monitor) GetAverageLatency() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.averageLatencyLocked()
}

func (m *Monitor) averageLatencyLocked() time.Duration {
	if len(m.recentLatencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, lat := range m.recentLatencies {
		total += lat
	}
	return total / time.Duration(len(m.recentLatencies))
}

// GetRequestCount returns number of requests in the given duration.
func (m *Monitor) GetRequestCount(duration time.Duration) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.clock.Now().Add(-duration)
	count := 0
	for _, t := range m.requestTimestamps {
		if t.After(cutoff) {
			count++
		}
	}
	return count
}

// GetStats returns current monitoring statistics.
func (m *Monitor) GetStats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MonitorStats{
		Status:            m.statusLocked(),
		AverageLatency:    m.averageLatencyLocked(),
		ThrottleCount429:  m.status429Count,
		ThrottleCount403:  m.status403Count,
		RequestsLast1Hour: len(m.requestTimestamps),
		RetryAfter:        m.retryAfterLocked(),
	}
}
