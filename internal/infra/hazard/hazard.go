// Package hazard defines how safety data is fetched for one ingredient.
package hazard

import (
	"context"
	"fmt"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

// Lookup fetches safety data for an ingredient name, CAS or EC number.
// A nil info with a nil error means the provider does not know the
// identifier.
type Lookup interface {
	Lookup(ctx context.Context, identifier string) (*domain.SafetyInfo, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, identifier string) (*domain.SafetyInfo, error)

func (f LookupFunc) Lookup(ctx context.Context, identifier string) (*domain.SafetyInfo, error) {
	return f(ctx, identifier)
}

// LookupError reports a failed lookup. It unwraps to the transport error so
// errors.Is works with the domain sentinels.
type LookupError struct {
	Provider   string
	Identifier string
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s lookup %q: http %d: %v", e.Provider, e.Identifier, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s lookup %q: %v", e.Provider, e.Identifier, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
