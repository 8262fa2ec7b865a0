// Package classifier maps GHS hazard signals onto domain.SeverityLevel.
//
// The mapping is a deliberate simplification of the GHS code space: a small
// table of numeric H-code bands plus the classification signal words.
// Classify is pure and never fails.
package classifier

import (
	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

// Band is an inclusive range of H-code numbers.
type Band struct {
	Name     string
	From, To int
}

// Contains reports whether the numeric part of an H code lies in the band.
func (b Band) Contains(n int) bool {
	return n >= b.From && n <= b.To
}

// SevereBands are the hazard families that always classify as Danger.
var SevereBands = []Band{
	{Name: "germ cell mutagenicity", From: 340, To: 341},
	{Name: "carcinogenicity", From: 350, To: 351},
	{Name: "reproductive toxicity", From: 360, To: 362},
	{Name: "specific target organ toxicity", From: 370, To: 373},
}

// HealthBand is the general health-hazard range; outside SevereBands it
// classifies as Warning.
var HealthBand = Band{Name: "health hazard", From: 300, To: 399}

// Classify returns the severity for a set of hazard statements and GHS
// classifications. Rules are checked in order and the first match wins, so
// one severe statement is never diluted by any number of benign ones.
func Classify(hazards []domain.HazardStatement, classifications []domain.GHSClassification) domain.SeverityLevel {
	if anyCode(hazards, inSevereBand) {
		return domain.SeverityDanger
	}
	if anySignal(classifications, domain.SignalDanger) {
		return domain.SeverityDanger
	}
	if anyCode(hazards, HealthBand.Contains) {
		return domain.SeverityWarning
	}
	if anySignal(classifications, domain.SignalWarning) {
		return domain.SeverityCaution
	}
	if len(hazards) == 0 && len(classifications) == 0 {
		return domain.SeveritySafe
	}
	return domain.SeverityUnknown
}

func inSevereBand(n int) bool {
	for _, b := range SevereBands {
		if b.Contains(n) {
			return true
		}
	}
	return false
}

// anyCode only considers plain H codes; EUH supplementary codes carry no band.
func anyCode(hazards []domain.HazardStatement, match func(int) bool) bool {
	for _, h := range hazards {
		n, ok := CodeNumber(h.Code)
		if ok && match(n) {
			return true
		}
	}
	return false
}

func anySignal(classifications []domain.GHSClassification, word domain.SignalWord) bool {
	for _, c := range classifications {
		if c.SignalWord == word {
			return true
		}
	}
	return false
}
