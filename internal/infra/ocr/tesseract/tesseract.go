//go:build tesseract

// Package tesseract registers a local OCR engine backed by gosseract. It
// needs libtesseract and is only compiled with the "tesseract" build tag.
package tesseract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/ocr"
)

func init() {
	ocr.RegisterEngine("tesseract", func(cfg ocr.EngineConfig) (ocr.Extractor, error) {
		return NewEngine(cfg), nil
	})
}

// languages maps ISO 639-1 hints to tesseract traineddata names.
var languages = map[string]string{
	"en": "eng",
	"de": "deu",
	"fr": "fra",
	"es": "spa",
	"it": "ita",
	"ja": "jpn",
	"zh": "chi_sim",
	"ko": "kor",
}

// Engine runs tesseract in-process.
type Engine struct {
	cfg           ocr.EngineConfig
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a tesseract engine.
func NewEngine(cfg ocr.EngineConfig) *Engine {
	if cfg.Name == "" {
		cfg.Name = "tesseract"
	}
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return e.cfg.Name }

// Extract implements ocr.Extractor. Tesseract is not cancellable, so ctx is
// only checked before starting.
func (e *Engine) Extract(ctx context.Context, image []byte, languageHint string) ([]string, domain.ExtractionMetadata, error) {
	start := time.Now()
	meta := domain.ExtractionMetadata{Provider: e.cfg.Name, Model: "tesseract " + gosseract.Version(), Language: languageHint}

	if err := ctx.Err(); err != nil {
		return nil, meta, err
	}

	data, err := ocr.Preprocess(image, e.cfg.MaxDimension, e.cfg.MaxPixels, e.cfg.JPEGQuality)
	if err != nil {
		return nil, meta, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(data); err != nil {
		return nil, meta, fmt.Errorf("%w: set image: %v", domain.ErrInvalidImage, err)
	}
	if lang, ok := languages[strings.ToLower(strings.TrimSpace(languageHint))]; ok {
		if err := c.SetLanguage(lang, "eng"); err != nil {
			return nil, meta, fmt.Errorf("%w: set language: %v", domain.ErrProviderFailure, err)
		}
	}

	text, err := c.Text()
	meta.Latency = time.Since(start)
	if err != nil {
		return nil, meta, fmt.Errorf("%w: recognize text: %v", domain.ErrProviderFailure, err)
	}

	names := ocr.SplitIngredientText(text)
	meta.UsedFallbackParsing = true
	if len(names) == 0 {
		return nil, meta, fmt.Errorf("%s: %w", e.cfg.Name, domain.ErrNoTextDetected)
	}
	return names, meta, nil
}
