// Package pipeline runs a label photo through extraction and safety
// resolution and assembles the scan result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/ocr"
	"github.com/taj0207/IngredientCheck/internal/infra/regulatory"
	"github.com/taj0207/IngredientCheck/internal/safety/metrics"
	"github.com/taj0207/IngredientCheck/internal/safety/resolver"
)

// Options tune a single scan.
type Options struct {
	// LanguageHint overrides the configured default label language.
	LanguageHint string
}

// Config wires the pipeline's collaborators.
type Config struct {
	Extractor    ocr.Extractor
	Resolver     *resolver.Resolver
	Registry     *regulatory.Registry
	Clock        clockwork.Clock
	LanguageHint string
}

// Pipeline is safe for concurrent scans.
type Pipeline struct {
	extractor    ocr.Extractor
	resolver     *resolver.Resolver
	registry     *regulatory.Registry
	clock        clockwork.Clock
	languageHint string
	logger       *slog.Logger
}

// New creates a pipeline. Registry and Clock are optional.
func New(cfg Config) *Pipeline {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		extractor:    cfg.Extractor,
		resolver:     cfg.Resolver,
		registry:     cfg.Registry,
		clock:        cfg.Clock,
		languageHint: cfg.LanguageHint,
		logger:       slog.Default().With("component", "pipeline"),
	}
}

// ProcessImage extracts ingredient names from image, resolves their safety
// data and returns the sorted result. Extraction failures are returned as
// the typed errors from the domain package.
func (p *Pipeline) ProcessImage(ctx context.Context, image []byte, opts Options) (*domain.ScanResult, error) {
	start := p.clock.Now()

	hint := opts.LanguageHint
	if hint == "" {
		hint = p.languageHint
	}

	names, meta, err := p.extractor.Extract(ctx, image, hint)
	if err != nil {
		return nil, fmt.Errorf("extract ingredients: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("extract ingredients: %w", domain.ErrNoTextDetected)
	}

	safety := p.resolver.Resolve(ctx, names)

	ingredients := make([]domain.Ingredient, 0, len(names))
	for _, name := range names {
		var info *domain.SafetyInfo
		if s, ok := safety[name]; ok {
			info = &s
		}
		ingredients = append(ingredients, p.newIngredient(name, info))
	}

	result := domain.NewScanResult(ingredients, p.clock.Now().UTC(), meta)
	metrics.ScansTotal.WithLabelValues(result.OverallSeverity().String()).Inc()

	p.logger.Info("Scan complete",
		"scan_id", result.ID,
		"provider", meta.Provider,
		"failed_over", meta.FailedOver,
		"ingredients", result.IngredientCount(),
		"resolved", len(safety),
		"concerns", result.ConcernCount(),
		"overall", result.OverallSeverity(),
		"duration", p.clock.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

func (p *Pipeline) newIngredient(name string, info *domain.SafetyInfo) domain.Ingredient {
	sub, listed := p.registry.Match(name)
	ing := domain.NewIngredient(name, info, sub.Category)
	if listed {
		ing.CAS = sub.CAS
		ing.EC = sub.EC
		ing.AlternativeNames = append([]string(nil), sub.Synonyms...)
	}
	return ing
}

// ResolveBatch resolves names without an image.
func (p *Pipeline) ResolveBatch(ctx context.Context, names []string) map[string]domain.SafetyInfo {
	return p.resolver.Resolve(ctx, names)
}

// ClearCache drops the local safety cache.
func (p *Pipeline) ClearCache() {
	p.resolver.ClearCache()
	p.logger.Info("Safety cache cleared")
}
