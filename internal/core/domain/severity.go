package domain

import (
	"fmt"
	"strings"
)

// SeverityLevel is the unified safety verdict for an ingredient.
// Values are ordered so that a larger value is always worse; Unknown sits
// above Safe because missing data must never read as an all-clear.
type SeverityLevel int

const (
	SeveritySafe SeverityLevel = iota
	SeverityUnknown
	SeverityCaution
	SeverityWarning
	SeverityDanger
)

var severityNames = map[SeverityLevel]string{
	SeveritySafe:    "safe",
	SeverityUnknown: "unknown",
	SeverityCaution: "caution",
	SeverityWarning: "warning",
	SeverityDanger:  "danger",
}

func (s SeverityLevel) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// IsConcern reports whether the level should be surfaced as a concern.
func (s SeverityLevel) IsConcern() bool {
	return s >= SeverityCaution
}

// ParseSeverity converts a case-insensitive severity name.
func ParseSeverity(raw string) (SeverityLevel, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for level, n := range severityNames {
		if n == name {
			return level, nil
		}
	}
	return SeverityUnknown, fmt.Errorf("unknown severity %q", raw)
}

func (s SeverityLevel) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SeverityLevel) UnmarshalText(text []byte) error {
	level, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = level
	return nil
}

// MaxSeverity returns the worst of the given levels, or Unknown for none.
func MaxSeverity(levels ...SeverityLevel) SeverityLevel {
	if len(levels) == 0 {
		return SeverityUnknown
	}
	worst := levels[0]
	for _, l := range levels[1:] {
		if l > worst {
			worst = l
		}
	}
	return worst
}
