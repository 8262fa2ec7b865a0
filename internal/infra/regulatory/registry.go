// Package regulatory matches ingredients against a dataset of substances
// regulated in the EU (REACH, CLP and the Cosmetics Regulation).
package regulatory

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/hazard"
)

//go:embed data/echa_substances.json
var embedded []byte

// Substance is one regulated substance.
type Substance struct {
	Name     string                 `json:"name"`
	Synonyms []string               `json:"synonyms"`
	CAS      string                 `json:"cas"`
	EC       string                 `json:"ec"`
	Category string                 `json:"category"`
	Level    domain.RegulatoryLevel `json:"level"`
	Lists    []string               `json:"lists"`
	Notes    string                 `json:"notes"`
}

// Status converts the entry to the status attached to SafetyInfo.
func (s Substance) Status() domain.RegulatoryStatus {
	return domain.RegulatoryStatus{
		Level: s.Level,
		Lists: append([]string(nil), s.Lists...),
		Notes: s.Notes,
	}
}

// Registry indexes substances by name, synonym, CAS and EC number.
type Registry struct {
	substances []Substance
	index      map[string]int
}

// Default returns the registry built from the embedded dataset.
func Default() (*Registry, error) {
	return Load(bytes.NewReader(embedded))
}

// LoadFile reads a dataset from path. An empty path means the embedded one.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open regulatory dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a JSON array of substances.
func Load(r io.Reader) (*Registry, error) {
	var subs []Substance
	if err := json.NewDecoder(r).Decode(&subs); err != nil {
		return nil, fmt.Errorf("decode regulatory dataset: %w", err)
	}

	reg := &Registry{substances: subs, index: make(map[string]int)}
	for i, s := range subs {
		if s.Name == "" {
			return nil, fmt.Errorf("regulatory dataset entry %d has no name", i)
		}
		switch s.Level {
		case domain.RegulatoryListed, domain.RegulatoryRestricted, domain.RegulatoryBanned:
		case "":
			reg.substances[i].Level = domain.RegulatoryListed
		default:
			return nil, fmt.Errorf("regulatory dataset entry %q: unknown level %q", s.Name, s.Level)
		}

		keys := append([]string{s.Name, s.CAS, s.EC}, s.Synonyms...)
		for _, k := range keys {
			if k = domain.CacheKey(k); k != "" {
				if _, dup := reg.index[k]; !dup {
					reg.index[k] = i
				}
			}
		}
	}
	return reg, nil
}

// Len returns the number of substances.
func (r *Registry) Len() int { return len(r.substances) }

// Match finds a substance by name, synonym, CAS or EC number.
func (r *Registry) Match(identifier string) (Substance, bool) {
	if r == nil {
		return Substance{}, false
	}
	i, ok := r.index[domain.CacheKey(identifier)]
	if !ok {
		return Substance{}, false
	}
	return r.substances[i], true
}

// Category returns the functional category of a known ingredient, or "".
func (r *Registry) Category(name string) string {
	s, ok := r.Match(name)
	if !ok {
		return ""
	}
	return s.Category
}

// Annotate decorates a lookup with the regulatory status of the matched
// substance. Lookups that fail or find nothing pass through untouched.
func Annotate(inner hazard.Lookup, reg *Registry) hazard.Lookup {
	return hazard.LookupFunc(func(ctx context.Context, identifier string) (*domain.SafetyInfo, error) {
		info, err := inner.Lookup(ctx, identifier)
		if err != nil || info == nil {
			return info, err
		}
		if s, ok := reg.Match(identifier); ok {
			info.Regulatory = s.Status()
			if !containsSource(info.Sources, "ECHA") {
				info.Sources = append(info.Sources, "ECHA")
			}
		}
		return info, nil
	})
}

func containsSource(sources []string, needle string) bool {
	for _, s := range sources {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
