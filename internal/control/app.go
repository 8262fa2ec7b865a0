// Package control wires the configured providers, caches and the HTTP API
// into a running application.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/taj0207/IngredientCheck/internal/core/config"
	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/hazard"
	"github.com/taj0207/IngredientCheck/internal/infra/hazard/pubchem"
	"github.com/taj0207/IngredientCheck/internal/infra/ocr"
	"github.com/taj0207/IngredientCheck/internal/infra/provider"
	redisclient "github.com/taj0207/IngredientCheck/internal/infra/redis"
	"github.com/taj0207/IngredientCheck/internal/infra/regulatory"
	"github.com/taj0207/IngredientCheck/internal/safety/api"
	"github.com/taj0207/IngredientCheck/internal/safety/cache"
	"github.com/taj0207/IngredientCheck/internal/safety/health"
	"github.com/taj0207/IngredientCheck/internal/safety/pipeline"
	"github.com/taj0207/IngredientCheck/internal/safety/resolver"
)

// ErrOCRNotConfigured is returned by ProcessImage when no extraction
// provider could be built.
var ErrOCRNotConfigured = errors.New("no ocr provider configured")

// Options control how the application is assembled.
type Options struct {
	// RequireOCR fails construction when the primary OCR provider cannot be
	// built. Commands that never scan images leave it off.
	RequireOCR bool

	// Clock is used by the caches, pipeline and health monitor.
	Clock clockwork.Clock
}

// App is the assembled application.
type App struct {
	cfg         config.AppConfig
	extractor   ocr.Extractor
	pipeline    *pipeline.Pipeline
	registry    *regulatory.Registry
	healthMon   *health.Monitor
	server      *api.Server
	redisClient *redisclient.Client
	providers   []provider.Provider
	log         *slog.Logger
}

// providerBacked is implemented by engines that call an HTTP provider.
type providerBacked interface {
	Provider() provider.Provider
}

// NewApp creates the application from cfg with all dependencies initialized.
func NewApp(cfg config.AppConfig, opts Options) (*App, error) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	log := slog.Default().With("component", "app")
	a := &App{cfg: cfg, log: log, healthMon: health.NewMonitor(opts.Clock)}

	// 1. Text extraction
	extractor, err := a.buildExtractor(cfg.OCR)
	if err != nil {
		if opts.RequireOCR {
			return nil, err
		}
		log.Debug("OCR disabled", "error", err)
	}
	a.extractor = extractor

	// 2. Regulatory dataset
	a.registry, err = regulatory.LoadFile(cfg.Regulatory.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load regulatory data: %w", err)
	}
	log.Debug("Regulatory dataset loaded", "substances", a.registry.Len(), "path", cfg.Regulatory.Path)

	// 3. Hazard lookups: provider, regulatory annotation, shared cache
	hazardClient := pubchem.NewClient(pubchem.Config{
		Name:      cfg.Hazard.Name,
		URL:       cfg.Hazard.URL,
		Timeout:   cfg.Hazard.Timeout,
		UserAgent: cfg.Hazard.UserAgent,
		Clock:     opts.Clock,
	})
	a.track("hazard", hazardClient.Provider())

	var lookup hazard.Lookup = regulatory.Annotate(hazardClient, a.registry)
	if cfg.Redis.URL != "" {
		a.redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, shared cache disabled", "error", err)
		} else {
			lookup = redisclient.SharedLookup(lookup, a.redisClient)
			a.healthMon.AddPinger("cache", "redis", a.redisClient)
			log.Info("Shared safety cache enabled")
		}
	}

	// 4. Local cache and resolver
	var store cache.Store
	if cfg.Cache.IsEnabled() {
		store = cache.New(cfg.Cache.TTL, opts.Clock)
	}
	res := resolver.New(lookup, store, cfg.Resolver.MaxConcurrent)

	// 5. Pipeline and API
	a.pipeline = pipeline.New(pipeline.Config{
		Extractor:    extractor,
		Resolver:     res,
		Registry:     a.registry,
		Clock:        opts.Clock,
		LanguageHint: cfg.OCR.LanguageHint,
	})
	a.server = api.NewServer(a, a.healthMon, api.Config{
		Port:         cfg.Server.Port,
		MaxImageSize: cfg.Server.MaxImageSize,
		ScanTimeout:  cfg.Server.ScanTimeout,
	})

	return a, nil
}

func (a *App) buildExtractor(cfg config.OCRConfig) (ocr.Extractor, error) {
	primary, err := a.buildEngine(cfg, cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("failed to init primary ocr: %w", err)
	}

	var fallback ocr.Extractor
	if cfg.Fallback != nil {
		fallback, err = a.buildEngine(cfg, *cfg.Fallback)
		if err != nil {
			// Scans still work on the primary alone.
			a.log.Warn("Failed to init fallback ocr, failover disabled", "error", err)
			fallback = nil
		}
	}

	a.log.Debug("OCR configured", "primary", primary.Name(), "failover", fallback != nil)
	return ocr.NewFailover(primary, fallback), nil
}

func (a *App) buildEngine(cfg config.OCRConfig, p config.ProviderConfig) (ocr.Extractor, error) {
	engine, err := ocr.NewEngine(p.Type, ocr.EngineConfig{
		Name:         p.Name,
		URL:          p.URL,
		APIKey:       p.APIKey,
		Model:        p.Model,
		Timeout:      p.Timeout,
		MaxTokens:    p.MaxTokens,
		MaxDimension: cfg.MaxDimension,
		MaxPixels:    cfg.MaxPixels,
		JPEGQuality:  cfg.JPEGQuality,
	})
	if err != nil {
		return nil, err
	}
	if pb, ok := engine.(providerBacked); ok {
		a.track("ocr", pb.Provider())
	}
	return engine, nil
}

func (a *App) track(kind string, p provider.Provider) {
	a.providers = append(a.providers, p)
	a.healthMon.AddProvider(kind, p)
}

// ProcessImage runs one label photo through the pipeline.
func (a *App) ProcessImage(ctx context.Context, image []byte, opts pipeline.Options) (*domain.ScanResult, error) {
	if a.extractor == nil {
		return nil, ErrOCRNotConfigured
	}
	return a.pipeline.ProcessImage(ctx, image, opts)
}

// ResolveBatch resolves ingredient names without an image.
func (a *App) ResolveBatch(ctx context.Context, names []string) map[string]domain.SafetyInfo {
	return a.pipeline.ResolveBatch(ctx, names)
}

// ClearCache drops the local cache and, when configured, the shared one.
func (a *App) ClearCache(ctx context.Context) error {
	a.pipeline.ClearCache()
	if a.redisClient == nil {
		return nil
	}
	n, err := a.redisClient.ClearSafety(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear shared cache: %w", err)
	}
	a.log.Info("Shared safety cache cleared", "keys", n)
	return nil
}

// Registry returns the loaded regulatory dataset.
func (a *App) Registry() *regulatory.Registry { return a.registry }

// Health returns the current health report.
func (a *App) Health(ctx context.Context) health.HealthReport {
	return a.healthMon.CheckHealth(ctx)
}

// Start starts the HTTP API in the background.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Error("API server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts down the API and releases provider connections.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping IngredientCheck...")

	err := a.server.Stop(ctx)

	for _, p := range a.providers {
		if cerr := p.Close(); cerr != nil {
			a.log.Warn("Failed to close provider", "provider", p.GetName(), "error", cerr)
		}
	}
	if a.redisClient != nil {
		if cerr := a.redisClient.Close(); cerr != nil {
			a.log.Warn("Failed to close Redis", "error", cerr)
		}
	}
	return err
}

// Close releases resources for commands that never started the API.
func (a *App) Close() error {
	for _, p := range a.providers {
		_ = p.Close()
	}
	if a.redisClient != nil {
		return a.redisClient.Close()
	}
	return nil
}
