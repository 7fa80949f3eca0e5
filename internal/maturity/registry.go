// Package maturity implements the assessment calculators and the registry
// the orchestrator resolves them from.
package maturity

import (
	"sync"

	"fs3m/internal/model"
)

// CalculatorFunc computes buckets and a summary from a submission's answer
// facts under a mapping config. Calculators are pure; persistence belongs to
// the caller.
type CalculatorFunc func(facts []model.AnswerFact, cfg model.MappingConfig) (*model.CalculationResult, error)

// Registry maps assessment-type slugs to calculators. It must be fully
// populated (RegisterBuiltins) before the orchestrator's first lookup.
type Registry struct {
	mu    sync.RWMutex
	table map[string]CalculatorFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{table: make(map[string]CalculatorFunc)}
}

// Register stores fn under slug. A second registration for the same slug
// replaces the first.
func (r *Registry) Register(slug string, fn CalculatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[slug] = fn
}

// Lookup returns the calculator registered under slug.
func (r *Registry) Lookup(slug string) (CalculatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.table[slug]
	return fn, ok
}

// Slugs returns the registered slugs, for diagnostics.
func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.table))
	for slug := range r.table {
		out = append(out, slug)
	}
	return out
}

// RegisterBuiltins installs every calculator shipped with the platform.
// Called once during app wiring, before the first assessment run.
func RegisterBuiltins(r *Registry) {
	r.Register(TypeMaturity15, Calculate)
}
