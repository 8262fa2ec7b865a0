// Package pubchem looks up GHS hazard data in the PubChem PUG REST and
// PUG View APIs.
package pubchem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/hazard"
	"github.com/taj0207/IngredientCheck/internal/infra/provider"
	"github.com/taj0207/IngredientCheck/internal/safety/classifier"
	"github.com/taj0207/IngredientCheck/internal/safety/metrics"
)

const (
	DefaultURL       = "https://pubchem.ncbi.nlm.nih.gov"
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "IngredientCheck/1.0"
)

// Config configures the PubChem client.
type Config struct {
	Name      string
	URL       string
	Timeout   time.Duration
	UserAgent string
	// Clock stamps LastUpdated and drives the back-off monitor.
	// Nil uses the real clock.
	Clock clockwork.Clock
}

// Client implements hazard.Lookup against PubChem.
type Client struct {
	name   string
	http   *provider.HTTPProvider
	logger *slog.Logger
	clock  clockwork.Clock
}

var _ hazard.Lookup = (*Client)(nil)

// NewClient creates a PubChem client, filling defaults for empty fields.
func NewClient(cfg Config) *Client {
	if cfg.Name == "" {
		cfg.Name = "pubchem"
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	transport := provider.NewHTTPProvider(cfg.Name, cfg.URL, cfg.Timeout, map[string]string{
		"User-Agent": cfg.UserAgent,
	})
	transport.Monitor = provider.NewMonitorWithClock(cfg.Clock)

	return &Client{
		name:   cfg.Name,
		http:   transport,
		logger: slog.Default().With("component", "hazard", "provider", cfg.Name),
		clock:  cfg.Clock,
	}
}

// Provider exposes the underlying transport for health reporting.
func (c *Client) Provider() provider.Provider { return c.http }

// Lookup resolves identifier to a compound and reads its GHS section.
func (c *Client) Lookup(ctx context.Context, identifier string) (*domain.SafetyInfo, error) {
	start := time.Now()
	info, err := c.lookup(ctx, identifier)

	outcome := provider.Kind(err)
	if err == nil && info == nil {
		outcome = "not_found"
	}
	metrics.HazardLookups.WithLabelValues(c.name, outcome).Inc()
	metrics.HazardLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	return info, err
}

func (c *Client) lookup(ctx context.Context, identifier string) (*domain.SafetyInfo, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return nil, nil
	}

	cid, err := c.searchCID(ctx, id)
	if err != nil {
		return nil, c.wrap(id, err)
	}
	if cid == 0 {
		c.logger.Debug("Compound not found", "identifier", id)
		return nil, nil
	}

	body, err := c.http.Execute(ctx, provider.Operation{
		Name:  "pug_view",
		Path:  "/rest/pug_view/data/compound/" + strconv.Itoa(cid) + "/JSON",
		Query: url.Values{"heading": {ghsHeading}},
	})
	if errors.Is(err, provider.ErrNotFound) {
		// Known compound without any GHS section.
		return c.unknown(cid, ""), nil
	}
	if err != nil {
		return nil, c.wrap(id, err)
	}

	var view pugView
	if err := json.Unmarshal(body, &view); err != nil || view.Record == nil {
		c.logger.Warn("Malformed GHS record, treating as unknown", "identifier", id, "cid", cid, "error", err)
		return c.unknown(cid, ""), nil
	}

	ghs := findSection(view.Record.Section, ghsHeading)
	if ghs == nil {
		return c.unknown(cid, view.Record.RecordTitle), nil
	}

	data := extractGHS(view.Record, ghs)
	info := &domain.SafetyInfo{
		HazardStatements: data.statements,
		Classifications:  data.classifications,
		Regulatory:       domain.RegulatoryStatus{Level: domain.RegulatoryNone},
		Sources:          data.sources,
		LastUpdated:      c.clock.Now().UTC(),
		Description:      describe(view.Record.RecordTitle, cid),
	}
	if len(info.Sources) == 0 {
		info.Sources = []string{"PubChem"}
	}
	// An empty or "not classified" GHS section classifies as Safe.
	info.Severity = classifier.Classify(info.HazardStatements, info.Classifications)

	c.logger.Debug("Resolved GHS data",
		"identifier", id,
		"cid", cid,
		"severity", info.Severity,
		"statements", len(info.HazardStatements),
		"not_classified", data.notClassified,
	)
	return info, nil
}

func (c *Client) searchCID(ctx context.Context, id string) (int, error) {
	var list cidList
	err := c.http.ExecuteJSON(ctx, provider.Operation{
		Name: "pug_search",
		Path: "/rest/pug/compound/name/" + url.PathEscape(id) + "/cids/JSON",
	}, &list)
	if errors.Is(err, provider.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(list.IdentifierList.CID) == 0 {
		return 0, nil
	}
	return list.IdentifierList.CID[0], nil
}

func (c *Client) unknown(cid int, title string) *domain.SafetyInfo {
	return &domain.SafetyInfo{
		Severity:         domain.SeverityUnknown,
		HazardStatements: []domain.HazardStatement{},
		Classifications:  []domain.GHSClassification{},
		Regulatory:       domain.RegulatoryStatus{Level: domain.RegulatoryNone},
		Sources:          []string{"PubChem"},
		LastUpdated:      c.clock.Now().UTC(),
		Description:      describe(title, cid),
	}
}

func (c *Client) wrap(id string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &hazard.LookupError{
		Provider:   c.name,
		Identifier: id,
		StatusCode: provider.StatusCode(err),
		Err:        err,
	}
}

func describe(title string, cid int) string {
	if title == "" {
		return fmt.Sprintf("PubChem CID %d", cid)
	}
	return fmt.Sprintf("%s (PubChem CID %d)", title, cid)
}
