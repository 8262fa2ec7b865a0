package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// maxErrorBody caps how much of an error body is kept on StatusError.
const maxErrorBody = 512

// HTTPProvider implements Provider for JSON APIs over HTTP.
type HTTPProvider struct {
	name       string
	endpoint   string
	headers    map[string]string
	httpClient *http.Client

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int

	Monitor *Monitor

	// FailFast rejects calls without a request while the monitor reports
	// the provider throttled or blocked. Leave it off for providers shared
	// by many concurrent lookups, where one 429 must not sink the rest.
	FailFast bool
}

// NewHTTPProvider creates a new HTTP provider. headers are sent on every
// request (authorization, user agent).
func NewHTTPProvider(name, endpoint string, timeout time.Duration, headers map[string]string) *HTTPProvider {
	return &HTTPProvider{
		name:     name,
		endpoint: strings.TrimRight(endpoint, "/"),
		headers:  headers,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		health: HealthStatus{
			Available:     true,
			LastSuccessAt: time.Now(),
		},
		Monitor: NewMonitor(),
	}
}

// Execute performs op and returns the raw response body of a 2xx reply.
// Failures are returned as *StatusError.
func (p *HTTPProvider) Execute(ctx context.Context, op Operation) ([]byte, error) {
	start := time.Now()

	status := StatusHealthy
	if p.FailFast {
		status = p.Monitor.CheckProviderStatus()
	}
	switch status {
	case StatusThrottled:
		return nil, &StatusError{
			Provider:  p.name,
			Operation: op.Name,
			Err:       fmt.Errorf("%w: retry after %v", domain.ErrRateLimited, p.Monitor.GetRetryAfter().Round(time.Second)),
		}
	case StatusBlocked:
		return nil, &StatusError{
			Provider:  p.name,
			Operation: op.Name,
			Err:       fmt.Errorf("%w: provider blocked for %v", domain.ErrAuthFailure, p.Monitor.GetRetryAfter().Round(time.Second)),
		}
	}

	req, err := p.newRequest(ctx, op)
	if err != nil {
		p.recordFailure()
		return nil, &StatusError{Provider: p.name, Operation: op.Name, Err: err}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.recordFailure()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &StatusError{
			Provider:  p.name,
			Operation: op.Name,
			Err:       fmt.Errorf("%w: %v", transportError(err), err),
		}
	}
	defer resp.Body.Close()

	latency := time.Since(start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		p.recordFailure()
		return nil, &StatusError{
			Provider:   p.name,
			Operation:  op.Name,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: read response: %v", transportError(err), err),
		}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		p.Monitor.RecordThrottle(http.StatusTooManyRequests, resp.Header.Get("Retry-After"))
	case resp.StatusCode == http.StatusForbidden:
		p.Monitor.RecordThrottle(http.StatusForbidden, "")
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		p.Monitor.RecordRequest(latency)
		p.recordSuccess(latency)
		return body, nil
	}

	sentinel := sentinelForStatus(resp.StatusCode)
	// Some providers report quota exhaustion with a 5xx and a message.
	if sentinel == domain.ErrProviderFailure && p.Monitor.DetectThrottlePattern(string(body)) {
		sentinel = domain.ErrRateLimited
	}
	// A 404 is an answer, not a provider fault.
	if resp.StatusCode == http.StatusNotFound {
		p.Monitor.RecordRequest(latency)
		p.recordSuccess(latency)
	} else {
		p.recordFailure()
	}

	return nil, &StatusError{
		Provider:   p.name,
		Operation:  op.Name,
		StatusCode: resp.StatusCode,
		Body:       truncate(string(body), maxErrorBody),
		Err:        sentinel,
	}
}

// ExecuteJSON performs op and decodes the response into out.
func (p *HTTPProvider) ExecuteJSON(ctx context.Context, op Operation, out any) error {
	body, err := p.Execute(ctx, op)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &StatusError{
			Provider:   p.name,
			Operation:  op.Name,
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("%w: %v", domain.ErrParseFailure, err),
		}
	}
	return nil
}

func (p *HTTPProvider) newRequest(ctx context.Context, op Operation) (*http.Request, error) {
	method := op.Method
	if method == "" {
		method = http.MethodGet
		if op.Body != nil {
			method = http.MethodPost
		}
	}

	url := p.endpoint + op.Path
	if len(op.Query) > 0 {
		url += "?" + op.Query.Encode()
	}

	var body io.Reader
	if op.Body != nil {
		data, err := json.Marshal(op.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if op.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	for k, v := range op.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// GetName returns the provider's name.
func (p *HTTPProvider) GetName() string {
	return p.name
}

// GetHealth returns the provider's health status.
func (p *HTTPProvider) GetHealth() HealthStatus {
	p.mu.RLock()
	h := p.health
	p.mu.RUnlock()

	stats := p.Monitor.GetStats()
	h.MonitorStats = &stats
	return h
}

// IsAvailable checks if the provider is available.
func (p *HTTPProvider) IsAvailable() bool {
	status := p.Monitor.CheckProviderStatus()
	return status == StatusHealthy || status == StatusDegraded
}

// Close cleans up resources.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *HTTPProvider) recordSuccess(latency time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.successCount++
	p.requestCount++
	p.totalLatency += latency
	p.health.LastSuccessAt = time.Now()
	p.health.Available = true

	p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	p.health.Latency = p.totalLatency / time.Duration(p.successCount)
}

func (p *HTTPProvider) recordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failureCount++
	p.requestCount++
	p.health.LastFailureAt = time.Now()

	p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	if p.health.ErrorRate > 0.5 {
		p.health.Available = false
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
