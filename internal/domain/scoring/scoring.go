// Package scoring computes the creditworthiness score: the weighted rule
// score with its affordability adjustments, the blend with a model
// probability, and the deterministic fallback used without a model.
package scoring

import (
	"fmt"
	"math"

	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/finance"
)

// Default scoring configuration constants.
const (
	// scoreAmplification scales the weighted percentage before adjustments.
	scoreAmplification = 1.0

	defaultDisposableFloor = 1.0
	maxScoreValue          = 100
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithHouseholdBaseline sets the disposable income expected per household member.
func WithHouseholdBaseline(baseline float64) Option {
	return func(e *Engine) {
		if baseline > 0 {
			e.baseline = baseline
		}
	}
}

// WithDisposableFloor sets the fraction of the household threshold below
// which disposable income is penalised.
func WithDisposableFloor(fraction float64) Option {
	return func(e *Engine) {
		if fraction > 0 {
			e.floor = fraction
		}
	}
}

// WithRules replaces entries of the strategy table, e.g. for an external
// catalog that adds numeric questions.
func WithRules(rules map[string]Rule) Option {
	return func(e *Engine) {
		for id, r := range rules {
			if r != nil {
				e.rules[id] = r
			}
		}
	}
}

// Engine scores answers against a catalog. It holds no mutable state once
// built and is safe for concurrent use.
type Engine struct {
	catalog  *catalog.Catalog
	rules    map[string]Rule
	baseline float64
	floor    float64
}

// NewEngine binds a strategy table to c. Every numeric question must have a
// rule; choice questions default to ChoiceRule.
func NewEngine(c *catalog.Catalog, opts ...Option) (*Engine, error) {
	e := &Engine{
		catalog:  c,
		rules:    DefaultRules(),
		baseline: finance.DefaultHouseholdBaseline,
		floor:    defaultDisposableFloor,
	}
	for _, opt := range opts {
		opt(e)
	}

	bound := make(map[string]Rule, len(e.rules))
	for _, q := range c.Questions() {
		r, ok := e.rules[q.ID]
		switch {
		case ok:
		case q.Type == catalog.TypeChoice:
			r = ChoiceRule
		default:
			return nil, fmt.Errorf("%w: %q", ErrMissingRule, q.ID)
		}
		bound[q.ID] = r
	}
	e.rules = bound
	return e, nil
}

// Catalog returns the catalog the engine was built for.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// HouseholdBaseline returns the configured per-member baseline.
func (e *Engine) HouseholdBaseline() float64 {
	return e.baseline
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
