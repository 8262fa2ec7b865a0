package ocr

import (
	"context"
	"log/slog"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/provider"
	"github.com/taj0207/IngredientCheck/internal/safety/metrics"
)

// Failover tries a primary extractor and, on any error, a fallback once.
type Failover struct {
	primary  Extractor
	fallback Extractor
	logger   *slog.Logger
}

// NewFailover wraps primary. A nil fallback returns primary unchanged.
func NewFailover(primary, fallback Extractor) Extractor {
	if fallback == nil {
		return primary
	}
	return &Failover{
		primary:  primary,
		fallback: fallback,
		logger:   slog.Default().With("component", "ocr-failover"),
	}
}

func (f *Failover) Name() string {
	return f.primary.Name() + "+" + f.fallback.Name()
}

// Extract returns the primary's answer, or the fallback's answer or error
// when the primary fails. The primary is never retried.
func (f *Failover) Extract(ctx context.Context, image []byte, languageHint string) ([]string, domain.ExtractionMetadata, error) {
	names, meta, err := f.primary.Extract(ctx, image, languageHint)
	if err == nil {
		return names, meta, nil
	}
	if ctx.Err() != nil {
		return nil, meta, ctx.Err()
	}

	f.logger.Warn("Primary extractor failed, using fallback",
		"primary", f.primary.Name(),
		"fallback", f.fallback.Name(),
		"error", err,
	)
	metrics.OCRFailovers.WithLabelValues(f.primary.Name(), f.fallback.Name(), provider.Kind(err)).Inc()

	names, meta, err = f.fallback.Extract(ctx, image, languageHint)
	meta.FailedOver = true
	return names, meta, err
}
