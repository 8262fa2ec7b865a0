package regulatory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/hazard"
)

func TestDefault_Match(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("load embedded dataset: %v", err)
	}
	if reg.Len() == 0 {
		t.Fatal("embedded dataset is empty")
	}

	tests := []struct {
		identifier string
		wantName   string
		wantLevel  domain.RegulatoryLevel
	}{
		{"Benzene", "Benzene", domain.RegulatoryRestricted},
		{"71-43-2", "Benzene", domain.RegulatoryRestricted},
		{"200-753-7", "Benzene", domain.RegulatoryRestricted},
		{"  dehp ", "Bis(2-ethylhexyl) phthalate", domain.RegulatoryRestricted},
		{"LILIAL", "Butylphenyl methylpropional", domain.RegulatoryBanned},
		{"Sodium  Benzoate", "Sodium benzoate", domain.RegulatoryListed},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			s, ok := reg.Match(tt.identifier)
			if !ok {
				t.Fatalf("expected match for %q", tt.identifier)
			}
			if s.Name != tt.wantName || s.Level != tt.wantLevel {
				t.Errorf("got %s/%s, want %s/%s", s.Name, s.Level, tt.wantName, tt.wantLevel)
			}
		})
	}

	if _, ok := reg.Match("water"); ok {
		t.Errorf("water must not be regulated")
	}
}

func TestRegistry_Category(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := reg.Category("formalin"); got != "preservative" {
		t.Errorf("expected preservative, got %q", got)
	}
	if got := reg.Category("water"); got != "" {
		t.Errorf("expected no category, got %q", got)
	}

	var nilReg *Registry
	if got := nilReg.Category("benzene"); got != "" {
		t.Errorf("nil registry must match nothing, got %q", got)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"missing name", `[{"cas": "1-1-1"}]`},
		{"bad level", `[{"name": "X", "level": "forbidden-ish"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.data)); err == nil {
				t.Errorf("expected error")
			}
		})
	}

	reg, err := Load(strings.NewReader(`[{"name": "Thing"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, _ := reg.Match("thing"); s.Level != domain.RegulatoryListed {
		t.Errorf("missing level should default to listed, got %q", s.Level)
	}
}

func TestAnnotate(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	inner := hazard.LookupFunc(func(ctx context.Context, id string) (*domain.SafetyInfo, error) {
		switch id {
		case "benzene", "water":
			return &domain.SafetyInfo{
				Severity:   domain.SeverityDanger,
				Regulatory: domain.RegulatoryStatus{Level: domain.RegulatoryNone},
				Sources:    []string{"PubChem"},
			}, nil
		case "broken":
			return nil, domain.ErrProviderFailure
		default:
			return nil, nil
		}
	})
	lookup := Annotate(inner, reg)

	info, err := lookup.Lookup(context.Background(), "benzene")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Regulatory.Level != domain.RegulatoryRestricted || len(info.Regulatory.Lists) == 0 {
		t.Errorf("expected restricted status, got %+v", info.Regulatory)
	}
	if info.Severity != domain.SeverityDanger {
		t.Errorf("annotation must not change severity, got %s", info.Severity)
	}
	if len(info.Sources) != 2 || info.Sources[1] != "ECHA" {
		t.Errorf("expected ECHA source appended, got %v", info.Sources)
	}

	info, _ = lookup.Lookup(context.Background(), "water")
	if info.Regulatory.Level != domain.RegulatoryNone {
		t.Errorf("unlisted substance must keep status none, got %+v", info.Regulatory)
	}

	if info, err := lookup.Lookup(context.Background(), "formaldehyde"); info != nil || err != nil {
		t.Errorf("not found must pass through, got %v %v", info, err)
	}
	if _, err := lookup.Lookup(context.Background(), "broken"); !errors.Is(err, domain.ErrProviderFailure) {
		t.Errorf("errors must pass through, got %v", err)
	}
}
