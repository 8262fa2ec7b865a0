package domain

import "github.com/google/uuid"

// Ingredient is one name extracted from a label together with its
// resolved safety data. It is not modified after construction; a rescan
// produces new instances.
type Ingredient struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	AlternativeNames []string    `json:"alternative_names,omitempty"`
	CAS              string      `json:"cas,omitempty"`
	EC               string      `json:"ec,omitempty"`
	Safety           *SafetyInfo `json:"safety,omitempty"`
	Category         string      `json:"category,omitempty"`
}

// NewIngredient creates an ingredient with a fresh synthetic id. The
// safety info is cloned so the ingredient exclusively owns it.
func NewIngredient(name string, safety *SafetyInfo, category string) Ingredient {
	return Ingredient{
		ID:       uuid.NewString(),
		Name:     name,
		Safety:   safety.Clone(),
		Category: category,
	}
}

// Severity returns Unknown when no safety data was resolved.
func (i Ingredient) Severity() SeverityLevel {
	if i.Safety == nil {
		return SeverityUnknown
	}
	return i.Safety.Severity
}
