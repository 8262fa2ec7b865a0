package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/provider"
	"github.com/taj0207/IngredientCheck/internal/safety/health"
	"github.com/taj0207/IngredientCheck/internal/safety/pipeline"
)

type fakeScanner struct {
	mu       sync.Mutex
	image    []byte
	opts     pipeline.Options
	deadline bool
	err      error
	known    map[string]domain.SafetyInfo
	cleared  int
	clearErr error
}

type scanCall struct {
	image    string
	hint     string
	deadline bool
}

func (f *fakeScanner) lastScan() scanCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return scanCall{image: string(f.image), hint: f.opts.LanguageHint, deadline: f.deadline}
}

func (f *fakeScanner) clearCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

func (f *fakeScanner) ProcessImage(ctx context.Context, image []byte, opts pipeline.Options) (*domain.ScanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = image
	f.opts = opts
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	danger := &domain.SafetyInfo{Severity: domain.SeverityDanger}
	ings := []domain.Ingredient{
		domain.NewIngredient("Water", &domain.SafetyInfo{Severity: domain.SeveritySafe}, ""),
		domain.NewIngredient("Benzene", danger, "solvent"),
	}
	return domain.NewScanResult(ings, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), domain.ExtractionMetadata{Provider: "openai"}), nil
}

func (f *fakeScanner) ResolveBatch(ctx context.Context, names []string) map[string]domain.SafetyInfo {
	out := make(map[string]domain.SafetyInfo)
	for _, n := range names {
		if info, ok := f.known[domain.CacheKey(n)]; ok {
			out[n] = info
		}
	}
	return out
}

func (f *fakeScanner) ClearCache(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	return f.clearErr
}

func newTestServer(scanner Scanner, cfg Config) *httptest.Server {
	return httptest.NewServer(NewServer(scanner, nil, cfg).Routes())
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestScan_RawBody(t *testing.T) {
	scanner := &fakeScanner{}
	srv := newTestServer(scanner, Config{ScanTimeout: time.Minute})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/scans?lang=fr", "image/jpeg", bytes.NewReader([]byte("jpeg-bytes")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Overall     string `json:"overall_safety_level"`
		Count       int    `json:"ingredient_count"`
		Ingredients []struct {
			Name string `json:"name"`
		} `json:"ingredients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Overall != "danger" || body.Count != 2 || body.Ingredients[0].Name != "Benzene" {
		t.Errorf("unexpected scan body %+v", body)
	}
	call := scanner.lastScan()
	if call.image != "jpeg-bytes" || call.hint != "fr" {
		t.Errorf("scanner got image %q hint %q", call.image, call.hint)
	}
	if !call.deadline {
		t.Errorf("expected scan timeout on the context")
	}
}

func TestScan_Multipart(t *testing.T) {
	scanner := &fakeScanner{}
	srv := newTestServer(scanner, Config{})
	defer srv.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "label.jpg")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("label-photo"))
	_ = mw.WriteField("lang", "de")
	_ = mw.Close()

	resp, err := http.Post(srv.URL+"/v1/scans", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	call := scanner.lastScan()
	if call.image != "label-photo" || call.hint != "de" {
		t.Errorf("scanner got image %q hint %q", call.image, call.hint)
	}
	if call.deadline {
		t.Errorf("no deadline expected without a scan timeout")
	}
}

func TestScan_MultipartWithoutImageField(t *testing.T) {
	srv := newTestServer(&fakeScanner{}, Config{})
	defer srv.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("lang", "de")
	_ = mw.Close()

	resp, err := http.Post(srv.URL+"/v1/scans", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestScan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		code    int
		message string
	}{
		{"empty body", "", nil, http.StatusBadRequest, domain.UserMessage(domain.ErrInvalidImage)},
		{"too large", strings.Repeat("x", 64), nil, http.StatusRequestEntityTooLarge, "The photo is too large."},
		{"invalid image", "img", fmt.Errorf("preprocess: %w", domain.ErrInvalidImage), http.StatusBadRequest, domain.UserMessage(domain.ErrInvalidImage)},
		{"no text", "img", fmt.Errorf("extract ingredients: %w", domain.ErrNoTextDetected), http.StatusUnprocessableEntity, domain.UserMessage(domain.ErrNoTextDetected)},
		{"rate limited", "img", domain.ErrRateLimited, http.StatusTooManyRequests, domain.UserMessage(domain.ErrRateLimited)},
		{"auth", "img", domain.ErrAuthFailure, http.StatusBadGateway, domain.UserMessage(domain.ErrAuthFailure)},
		{"parse", "img", domain.ErrParseFailure, http.StatusBadGateway, domain.UserMessage(domain.ErrParseFailure)},
		{"timeout", "img", domain.ErrTimeout, http.StatusGatewayTimeout, domain.UserMessage(domain.ErrTimeout)},
		{"unexpected", "img", errors.New("boom"), http.StatusInternalServerError, domain.UserMessage(errors.New("boom"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeScanner{err: tt.err}, Config{MaxImageSize: 32})
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/v1/scans", "application/octet-stream", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.code {
				t.Errorf("code = %d, want %d", resp.StatusCode, tt.code)
			}
			if msg := decodeError(t, resp); msg != tt.message {
				t.Errorf("message = %q, want %q", msg, tt.message)
			}
		})
	}
}

func TestStatusFor_WrappedProviderError(t *testing.T) {
	err := fmt.Errorf("extract ingredients: %w", &provider.StatusError{
		Provider:   "openai",
		StatusCode: http.StatusServiceUnavailable,
		Err:        domain.ErrProviderFailure,
	})
	if got := StatusFor(err); got != http.StatusBadGateway {
		t.Errorf("StatusFor() = %d, want 502", got)
	}
	if got := StatusFor(context.DeadlineExceeded); got != http.StatusGatewayTimeout {
		t.Errorf("StatusFor(deadline) = %d, want 504", got)
	}
}

func TestResolve(t *testing.T) {
	scanner := &fakeScanner{known: map[string]domain.SafetyInfo{
		"benzene": {Severity: domain.SeverityDanger},
	}}
	srv := newTestServer(scanner, Config{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/resolve", "application/json", strings.NewReader(`{"names": ["Benzene", "Moon Dust"]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body ResolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Results["Benzene"].Severity != domain.SeverityDanger {
		t.Errorf("expected benzene danger, got %+v", body.Results)
	}
	if len(body.Unresolved) != 1 || body.Unresolved[0] != "Moon Dust" {
		t.Errorf("expected Moon Dust unresolved, got %v", body.Unresolved)
	}
}

func TestResolve_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "benzene"},
		{"no names", `{"names": []}`},
		{"too many", `{"names": [` + strings.TrimSuffix(strings.Repeat(`"x",`, maxResolveNames+1), ",") + `]}`},
	}

	srv := newTestServer(&fakeScanner{}, Config{})
	defer srv.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/resolve", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
			if decodeError(t, resp) == "" {
				t.Errorf("expected an error message")
			}
		})
	}
}

func TestClearCache(t *testing.T) {
	scanner := &fakeScanner{}
	srv := newTestServer(scanner, Config{})
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/cache", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || scanner.clearCount() != 1 {
		t.Errorf("expected 204 and one clear, got %d/%d", resp.StatusCode, scanner.clearCount())
	}

	scanner.mu.Lock()
	scanner.clearErr = errors.New("redis down")
	scanner.mu.Unlock()
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500 when clearing fails, got %d", resp.StatusCode)
	}
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	monitor := health.NewMonitor(clockwork.NewFakeClock())
	srv := httptest.NewServer(NewServer(&fakeScanner{}, monitor, Config{}).Routes())
	defer srv.Close()

	for _, path := range []string{"/health", "/health/detailed", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}

	resp, err := http.Get(srv.URL + "/v1/scans")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET /v1/scans, got %d", resp.StatusCode)
	}
}
