package classifier

import (
	"testing"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

func statements(codes ...string) []domain.HazardStatement {
	out := make([]domain.HazardStatement, len(codes))
	for i, c := range codes {
		out[i] = domain.HazardStatement{Code: c, Category: domain.CategoryForCode(c)}
	}
	return out
}

func signals(words ...domain.SignalWord) []domain.GHSClassification {
	out := make([]domain.GHSClassification, len(words))
	for i, w := range words {
		out[i] = domain.GHSClassification{Pictogram: "GHS07", SignalWord: w}
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		hazards  []domain.HazardStatement
		classes  []domain.GHSClassification
		expected domain.SeverityLevel
	}{
		{"empty inputs", nil, nil, domain.SeveritySafe},
		{"carcinogen", statements("H350"), nil, domain.SeverityDanger},
		{"carcinogen with suffix", statements("H350i"), nil, domain.SeverityDanger},
		{"suspected carcinogen", statements("H351"), nil, domain.SeverityDanger},
		{"genetic defects", statements("H340"), nil, domain.SeverityDanger},
		{"reproductive toxicity", statements("H360FD"), nil, domain.SeverityDanger},
		{"lactation", statements("H362"), nil, domain.SeverityDanger},
		{"organ damage", statements("H372"), nil, domain.SeverityDanger},
		{"danger signal word", nil, signals(domain.SignalDanger), domain.SeverityDanger},
		{"health band", statements("H315"), nil, domain.SeverityWarning},
		{"health band beats warning signal", statements("H319"), signals(domain.SignalWarning), domain.SeverityWarning},
		{"warning signal only", statements("H225"), signals(domain.SignalWarning), domain.SeverityCaution},
		{"physical code without signal", statements("H225"), nil, domain.SeverityUnknown},
		{"environmental code without signal", statements("H410"), nil, domain.SeverityUnknown},
		{"unrecognized code", statements("X999"), nil, domain.SeverityUnknown},
		{"pictogram without signal word", nil, signals(domain.SignalNone), domain.SeverityUnknown},
		{"supplementary code is not in a band", statements("EUH370"), nil, domain.SeverityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.hazards, tt.classes); got != tt.expected {
				t.Errorf("Classify() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestClassify_SevereIsNeverDiluted(t *testing.T) {
	benign := []string{"H225", "H315", "H319", "H335", "H410", "H412", "EUH066"}
	for n := 0; n <= len(benign); n++ {
		for _, severe := range []string{"H340", "H350", "H361", "H373"} {
			codes := append(append([]string{}, benign[:n]...), severe)
			// Put the severe code at both ends of the list.
			for _, list := range [][]string{codes, append([]string{severe}, benign[:n]...)} {
				got := Classify(statements(list...), signals(domain.SignalWarning))
				if got != domain.SeverityDanger {
					t.Errorf("Classify(%v) = %s, want danger", list, got)
				}
			}
		}
	}
}

func TestParseStatement(t *testing.T) {
	got := ParseStatement("H225 (100%): Highly Flammable liquid and vapor [Danger Flammable liquids]")
	if len(got) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(got))
	}
	if got[0].Code != "H225" || got[0].Category != domain.HazardPhysical {
		t.Errorf("unexpected statement %+v", got[0])
	}
	if got[0].Statement != "Highly Flammable liquid and vapor" {
		t.Errorf("unexpected text %q", got[0].Statement)
	}

	combined := ParseStatement("H300+H310+H330 (12.5%): Fatal if swallowed, in contact with skin or if inhaled")
	if len(combined) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(combined))
	}
	if combined[2].Code != "H330" {
		t.Errorf("expected H330, got %s", combined[2].Code)
	}

	if ParseStatement("Not Classified") != nil {
		t.Errorf("expected no statements for text without codes")
	}
}

func TestParseCode(t *testing.T) {
	got := ParseCode("h350i, H360FD and EUH208")
	want := []string{"H350i", "H360FD", "EUH208"}
	if len(got) != len(want) {
		t.Fatalf("ParseCode = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("code %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNormalizePictogram(t *testing.T) {
	tests := map[string]string{
		"GHS02":  "GHS02",
		"ghs7":   "GHS07",
		"https://pubchem.ncbi.nlm.nih.gov/images/ghs/GHS08.svg": "GHS08",
		"Health Hazard":        "GHS08",
		"Exclamation Mark":     "GHS07",
		"Environmental Hazard": "GHS09",
		"Skull and crossbones": "GHS06",
		"Sparkles":             "Sparkles",
	}
	for in, want := range tests {
		if got := NormalizePictogram(in); got != want {
			t.Errorf("NormalizePictogram(%q) = %q, want %q", in, got, want)
		}
	}
}
