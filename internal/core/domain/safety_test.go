package domain

import "testing"

func TestCategoryForCode(t *testing.T) {
	tests := []struct {
		code string
		want HazardCategory
	}{
		{"H225", HazardPhysical},
		{"H350", HazardHealth},
		{"h350i", HazardHealth},
		{"H410", HazardEnvironmental},
		{"EUH208", HazardPhysical},
		{"EUH066", HazardUnclassified},
		{"H5", HazardUnclassified},
		{"X123", HazardUnclassified},
		{"", HazardUnclassified},
	}

	for _, tt := range tests {
		if got := CategoryForCode(tt.code); got != tt.want {
			t.Errorf("CategoryForCode(%q) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestSafetyInfo_CloneIsIndependent(t *testing.T) {
	orig := &SafetyInfo{
		Severity:         SeverityDanger,
		HazardStatements: []HazardStatement{{Code: "H350"}},
		Sources:          []string{"PubChem"},
	}
	c := orig.Clone()
	c.HazardStatements[0].Code = "H200"
	c.Sources[0] = "other"

	if orig.HazardStatements[0].Code != "H350" || orig.Sources[0] != "PubChem" {
		t.Errorf("clone shares memory with original")
	}
	if (*SafetyInfo)(nil).Clone() != nil {
		t.Errorf("clone of nil should be nil")
	}
}

func TestCacheKey(t *testing.T) {
	tests := map[string]string{
		"  Water ":         "water",
		"Sodium  Chloride": "sodium chloride",
		"71-43-2":          "71-43-2",
	}
	for in, want := range tests {
		if got := CacheKey(in); got != want {
			t.Errorf("CacheKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeveritySafe < SeverityUnknown && SeverityUnknown < SeverityCaution &&
		SeverityCaution < SeverityWarning && SeverityWarning < SeverityDanger) {
		t.Fatal("severity levels are not ordered safe < unknown < caution < warning < danger")
	}
	if MaxSeverity(SeveritySafe, SeverityUnknown) != SeverityUnknown {
		t.Errorf("unknown must outrank safe when aggregating")
	}
	if got, err := ParseSeverity("DANGER"); err != nil || got != SeverityDanger {
		t.Errorf("ParseSeverity(DANGER) = %v, %v", got, err)
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Errorf("expected error for unknown severity name")
	}
}
