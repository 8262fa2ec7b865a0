package domain

import (
	"strings"
	"time"
)

// HazardCategory groups hazard statements by the code's hundreds digit.
type HazardCategory string

const (
	HazardPhysical      HazardCategory = "physical"
	HazardHealth        HazardCategory = "health"
	HazardEnvironmental HazardCategory = "environmental"
	HazardUnclassified  HazardCategory = "unclassified"
)

// HazardStatement is a single GHS hazard statement (e.g. H350).
type HazardStatement struct {
	Code      string         `json:"code"`
	Statement string         `json:"statement"`
	Category  HazardCategory `json:"category"`
}

// CategoryForCode derives the category from an H or EUH code.
// H2xx is physical, H3xx health and H4xx environmental.
func CategoryForCode(code string) HazardCategory {
	c := strings.ToUpper(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(c, "EUH"):
		c = c[3:]
	case strings.HasPrefix(c, "H"):
		c = c[1:]
	default:
		return HazardUnclassified
	}
	if len(c) < 3 {
		return HazardUnclassified
	}
	for _, r := range c[:3] {
		if r < '0' || r > '9' {
			return HazardUnclassified
		}
	}
	switch c[0] {
	case '2':
		return HazardPhysical
	case '3':
		return HazardHealth
	case '4':
		return HazardEnvironmental
	default:
		return HazardUnclassified
	}
}

// SignalWord is the GHS signal word attached to a classification.
type SignalWord string

const (
	SignalDanger  SignalWord = "danger"
	SignalWarning SignalWord = "warning"
	SignalNone    SignalWord = "none"
)

// ParseSignalWord normalizes provider spellings ("DANGER", "Warning", "").
func ParseSignalWord(raw string) SignalWord {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "danger":
		return SignalDanger
	case "warning":
		return SignalWarning
	default:
		return SignalNone
	}
}

// GHSClassification is one pictogram plus its signal word.
type GHSClassification struct {
	Pictogram   string     `json:"pictogram"`
	SignalWord  SignalWord `json:"signal_word"`
	Description string     `json:"description,omitempty"`
}

// RegulatoryLevel summarizes how strictly a substance is regulated.
type RegulatoryLevel string

const (
	RegulatoryNone       RegulatoryLevel = "none"
	RegulatoryListed     RegulatoryLevel = "listed"
	RegulatoryRestricted RegulatoryLevel = "restricted"
	RegulatoryBanned     RegulatoryLevel = "banned"
)

// RegulatoryStatus records regulatory listings for a substance.
type RegulatoryStatus struct {
	Level RegulatoryLevel `json:"level"`
	Lists []string        `json:"lists,omitempty"`
	Notes string          `json:"notes,omitempty"`
}

// SafetyInfo is the normalized hazard data for one ingredient.
type SafetyInfo struct {
	Severity         SeverityLevel       `json:"severity"`
	HazardStatements []HazardStatement   `json:"hazard_statements"`
	Classifications  []GHSClassification `json:"classifications"`
	Regulatory       RegulatoryStatus    `json:"regulatory"`
	Sources          []string            `json:"sources,omitempty"`
	LastUpdated      time.Time           `json:"last_updated"`
	Description      string              `json:"description,omitempty"`
}

// HasHazards reports whether any hazard statement or classification exists.
func (s *SafetyInfo) HasHazards() bool {
	return len(s.HazardStatements) > 0 || len(s.Classifications) > 0
}

// Clone returns a deep copy so callers never share slices.
func (s *SafetyInfo) Clone() *SafetyInfo {
	if s == nil {
		return nil
	}
	c := *s
	c.HazardStatements = append([]HazardStatement(nil), s.HazardStatements...)
	c.Classifications = append([]GHSClassification(nil), s.Classifications...)
	c.Regulatory.Lists = append([]string(nil), s.Regulatory.Lists...)
	c.Sources = append([]string(nil), s.Sources...)
	return &c
}

// CacheKey normalizes an ingredient identifier (name, CAS or EC number).
func CacheKey(identifier string) string {
	return strings.ToLower(strings.Join(strings.Fields(identifier), " "))
}
