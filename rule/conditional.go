package rule

import (
	ex "github.com/gofhir/examiner"
)

// Predicate is a patient-level condition.
type Predicate[P any] func(P) bool

// conditionalRule gates a PropertyRule on a predicate over the whole patient.
type conditionalRule[P any] struct {
	gate  Predicate[P]
	inner PropertyRule[P]
}

// When returns a PropertyRule that only evaluates pr when gate holds for the
// patient. When the gate is false the rule passes vacuously and neither the
// accessor nor the inner rule is invoked.
func When[P any](gate Predicate[P], pr PropertyRule[P]) PropertyRule[P] {
	if gate == nil || pr == nil {
		panic(ex.ErrNilRule)
	}
	return &conditionalRule[P]{gate: gate, inner: pr}
}

// Unless is When with the gate negated.
func Unless[P any](gate Predicate[P], pr PropertyRule[P]) PropertyRule[P] {
	if gate == nil {
		panic(ex.ErrNilRule)
	}
	return When(func(p P) bool { return !gate(p) }, pr)
}

// Property returns the inner rule's property.
func (r *conditionalRule[P]) Property() string {
	return r.inner.Property()
}

// Test passes when the gate is closed, otherwise defers to the inner rule.
func (r *conditionalRule[P]) Test(rctx *Context, patient P) (bool, error) {
	if !r.gate(patient) {
		return true, nil
	}
	return r.inner.Test(rctx, patient)
}

// Apply returns nil when the gate is closed, otherwise defers to the inner rule.
func (r *conditionalRule[P]) Apply(rctx *Context, patient P) (*ex.Ailment, error) {
	if !r.gate(patient) {
		return nil, nil
	}
	return r.inner.Apply(rctx, patient)
}

// PeekAilment describes the inner rule; gating does not change it.
func (r *conditionalRule[P]) PeekAilment() ex.Ailment {
	return r.inner.PeekAilment()
}

// Params returns the inner rule's parameters.
func (r *conditionalRule[P]) Params() ex.Params {
	return r.inner.Params()
}
