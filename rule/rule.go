package rule

import (
	ex "github.com/gofhir/examiner"
)

// Rule is a pass/fail check over a single value.
//
// Implementations must be consistent: Apply returns nil iff Test returns
// true. PeekAilment describes the check without a value and is used for
// introspection. Rules must be safe to share across examinations.
type Rule[V any] interface {
	// Test reports whether value passes.
	Test(value V) bool

	// Apply returns the ailment for value, or nil when it passes.
	Apply(value V) *ex.Ailment

	// PeekAilment returns a template of the ailment this rule reports.
	PeekAilment() ex.Ailment

	// Params returns the parameters the rule was configured with.
	Params() ex.Params
}

// Checker is implemented by rules whose evaluation can fail for reasons
// unrelated to the value being valid, e.g. an expression that cannot be
// evaluated against the value's shape. Property evaluation prefers Check
// over Apply so such failures abort the examination instead of being
// reported as ailments.
type Checker[V any] interface {
	Check(value V) (*ex.Ailment, error)
}

// check evaluates r against v, going through Checker when available.
func check[V any](r Rule[V], v V) (*ex.Ailment, error) {
	if c, ok := r.(Checker[V]); ok {
		return c.Check(v)
	}
	return r.Apply(v), nil
}

// test is the boolean counterpart of check.
func test[V any](r Rule[V], v V) (bool, error) {
	if c, ok := r.(Checker[V]); ok {
		a, err := c.Check(v)
		return a == nil, err
	}
	return r.Test(v), nil
}

// ruleID returns the id a rule reports under.
func ruleID[V any](r Rule[V]) string {
	return r.PeekAilment().Rule
}

// funcRule adapts a predicate into a Rule.
type funcRule[V any] struct {
	id     string
	params ex.Params
	pass   func(V) bool
}

// New creates a leaf Rule from a predicate. The ailment it reports carries
// id and a copy of params.
func New[V any](id string, params ex.Params, pass func(V) bool) Rule[V] {
	if pass == nil {
		panic(ex.ErrNilRule)
	}
	return &funcRule[V]{id: id, params: params.Clone(), pass: pass}
}

// Test calls the wrapped predicate.
func (r *funcRule[V]) Test(value V) bool {
	return r.pass(value)
}

// Apply returns the rule's ailment when the predicate fails.
func (r *funcRule[V]) Apply(value V) *ex.Ailment {
	if r.pass(value) {
		return nil
	}
	a := r.PeekAilment()
	return &a
}

// PeekAilment returns the ailment template.
func (r *funcRule[V]) PeekAilment() ex.Ailment {
	return ex.Ailment{Rule: r.id, Params: r.params.Clone()}
}

// Params returns a copy of the configured parameters.
func (r *funcRule[V]) Params() ex.Params {
	return r.params.Clone()
}
