// Package ocr turns a label photo into an ordered list of ingredient names.
package ocr

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

// Extractor reads ingredient names from an encoded image.
type Extractor interface {
	// Name identifies the engine in logs and metrics.
	Name() string

	// Extract returns names in label order. A well-formed empty answer is
	// domain.ErrNoTextDetected.
	Extract(ctx context.Context, image []byte, languageHint string) ([]string, domain.ExtractionMetadata, error)
}

// EngineConfig carries the settings of one extraction engine.
type EngineConfig struct {
	Name         string
	URL          string
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxTokens    int
	MaxDimension int
	MaxPixels    int
	JPEGQuality  int
}

// Factory builds an Extractor from its config.
type Factory func(cfg EngineConfig) (Extractor, error)

var (
	enginesMu sync.RWMutex
	engines   = map[string]Factory{}
)

// RegisterEngine makes an engine kind available to NewEngine. Engines that
// need cgo register themselves from a build-tagged package.
func RegisterEngine(kind string, f Factory) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[kind] = f
}

// NewEngine builds an engine of the given kind.
func NewEngine(kind string, cfg EngineConfig) (Extractor, error) {
	enginesMu.RLock()
	f, ok := engines[kind]
	enginesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ocr engine %q (available: %v)", kind, Engines())
	}
	return f(cfg)
}

// Engines lists registered engine kinds.
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	kinds := make([]string, 0, len(engines))
	for k := range engines {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func init() {
	RegisterEngine("vision", func(cfg EngineConfig) (Extractor, error) {
		return NewVisionClient(cfg)
	})
}
