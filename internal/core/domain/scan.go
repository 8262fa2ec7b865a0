package domain

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ExtractionMetadata describes how the ingredient names were obtained.
type ExtractionMetadata struct {
	Provider            string        `json:"provider"`
	Model               string        `json:"model,omitempty"`
	Language            string        `json:"language,omitempty"`
	UsedFallbackParsing bool          `json:"used_fallback_parsing,omitempty"`
	FailedOver          bool          `json:"failed_over,omitempty"`
	Latency             time.Duration `json:"latency"`
	PromptTokens        int           `json:"prompt_tokens,omitempty"`
	CompletionTokens    int           `json:"completion_tokens,omitempty"`
}

// ScanResult is the immutable outcome of one label scan. Ingredients are
// held worst-first; ties keep their extraction order. The overall severity
// is fixed at construction.
type ScanResult struct {
	ID         string
	ScannedAt  time.Time
	Extraction ExtractionMetadata

	ingredients []Ingredient
	overall     SeverityLevel
}

// NewScanResult sorts the ingredients and computes the overall severity.
// An empty ingredient list yields Unknown.
func NewScanResult(ingredients []Ingredient, scannedAt time.Time, meta ExtractionMetadata) *ScanResult {
	sorted := slices.Clone(ingredients)
	slices.SortStableFunc(sorted, func(a, b Ingredient) int {
		return int(b.Severity()) - int(a.Severity())
	})

	levels := make([]SeverityLevel, len(sorted))
	for i, ing := range sorted {
		levels[i] = ing.Severity()
	}

	return &ScanResult{
		ID:          uuid.NewString(),
		ScannedAt:   scannedAt,
		Extraction:  meta,
		ingredients: sorted,
		overall:     MaxSeverity(levels...),
	}
}

// Ingredients returns a copy of the ordered ingredient list.
func (r *ScanResult) Ingredients() []Ingredient {
	return slices.Clone(r.ingredients)
}

func (r *ScanResult) OverallSeverity() SeverityLevel { return r.overall }

func (r *ScanResult) IngredientCount() int { return len(r.ingredients) }

// ConcernCount counts ingredients at Caution or worse.
func (r *ScanResult) ConcernCount() int {
	n := 0
	for _, ing := range r.ingredients {
		if ing.Severity().IsConcern() {
			n++
		}
	}
	return n
}

// UnknownCount counts ingredients without a usable verdict.
func (r *ScanResult) UnknownCount() int {
	n := 0
	for _, ing := range r.ingredients {
		if ing.Severity() == SeverityUnknown {
			n++
		}
	}
	return n
}

// WithIngredient returns a new result with ing appended.
func (r *ScanResult) WithIngredient(ing Ingredient) *ScanResult {
	next := append(r.Ingredients(), ing)
	return r.rebuild(next)
}

// WithoutIngredient returns a new result without the ingredient with id.
func (r *ScanResult) WithoutIngredient(id string) *ScanResult {
	next := slices.DeleteFunc(r.Ingredients(), func(ing Ingredient) bool {
		return ing.ID == id
	})
	return r.rebuild(next)
}

func (r *ScanResult) rebuild(ingredients []Ingredient) *ScanResult {
	res := NewScanResult(ingredients, r.ScannedAt, r.Extraction)
	res.ID = r.ID
	return res
}

type scanResultJSON struct {
	ID              string             `json:"id"`
	ScannedAt       time.Time          `json:"scanned_at"`
	OverallSeverity SeverityLevel      `json:"overall_safety_level"`
	IngredientCount int                `json:"ingredient_count"`
	ConcernCount    int                `json:"concern_count"`
	UnknownCount    int                `json:"unknown_count"`
	Ingredients     []Ingredient       `json:"ingredients"`
	Extraction      ExtractionMetadata `json:"extraction"`
}

func (r *ScanResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(scanResultJSON{
		ID:              r.ID,
		ScannedAt:       r.ScannedAt,
		OverallSeverity: r.overall,
		IngredientCount: r.IngredientCount(),
		ConcernCount:    r.ConcernCount(),
		UnknownCount:    r.UnknownCount(),
		Ingredients:     r.ingredients,
		Extraction:      r.Extraction,
	})
}
