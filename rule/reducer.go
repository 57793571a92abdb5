package rule

import (
	ex "github.com/gofhir/examiner"
)

// SharedRule is a rule whose per-property checks all derive from one
// computation over the whole patient. Reducer is the only implementation.
type SharedRule[P any] interface {
	// Name identifies the shared computation.
	Name() string

	// Properties returns the properties checked against the derived value.
	Properties() []string

	expand() []PropertyRule[P]
}

// Reducer derives a value of type D from the patient once per examination
// and checks it on behalf of several properties.
//
//	score := rule.NewReducer("score", func(p Form) (int, error) {
//		return p.A + p.B, nil
//	}).
//		Check("a", rules.NonNegative[int]()).
//		Check("b", rules.NonNegative[int]())
//
//	set := rule.OfShared[Form](score)
type Reducer[P, D any] struct {
	name    string
	compute func(P) (D, error)
	checks  []sharedCheck[D]
}

type sharedCheck[D any] struct {
	property string
	rule     Rule[D]
}

// NewReducer creates a Reducer with no checks.
func NewReducer[P, D any](name string, compute func(P) (D, error)) *Reducer[P, D] {
	if compute == nil {
		panic(ex.ErrNilRule)
	}
	return &Reducer[P, D]{name: name, compute: compute}
}

// Check returns a new Reducer that also checks the derived value with r on
// behalf of property.
func (r *Reducer[P, D]) Check(property string, check Rule[D]) *Reducer[P, D] {
	if check == nil {
		panic(ex.ErrNilRule)
	}
	checks := make([]sharedCheck[D], 0, len(r.checks)+1)
	checks = append(checks, r.checks...)
	checks = append(checks, sharedCheck[D]{property: property, rule: check})
	return &Reducer[P, D]{name: r.name, compute: r.compute, checks: checks}
}

// Name returns the reducer's name.
func (r *Reducer[P, D]) Name() string {
	return r.name
}

// Properties returns the checked properties in registration order.
func (r *Reducer[P, D]) Properties() []string {
	out := make([]string, len(r.checks))
	for i, c := range r.checks {
		out[i] = c.property
	}
	return out
}

// expand creates one delegate and a shadow per check, all pointing at it.
func (r *Reducer[P, D]) expand() []PropertyRule[P] {
	d := &delegate[P, D]{reducer: r}
	out := make([]PropertyRule[P], 0, len(r.checks))
	for i := range r.checks {
		out = append(out, &shadow[P, D]{delegate: d, index: i})
	}
	return out
}

// OfShared expands shared rules into a RuleSet of shadows, one per checked
// property.
func OfShared[P any](shared ...SharedRule[P]) RuleSet[P] {
	n := 0
	for _, s := range shared {
		if s == nil {
			panic(ex.ErrNilRule)
		}
		n += len(s.Properties())
	}
	out := make([]PropertyRule[P], 0, n)
	for _, s := range shared {
		out = append(out, s.expand()...)
	}
	return RuleSet[P]{rules: out}
}

// delegate runs the reducer's computation and every check against the
// derived value. Its outcomes live in the call scope, keyed by the delegate
// itself, never on the delegate.
type delegate[P, D any] struct {
	reducer *Reducer[P, D]
}

func (d *delegate[P, D]) outcomes(rctx *Context, patient P) ([]*ex.Ailment, error) {
	if rctx == nil {
		return d.run(patient)
	}
	v, err := rctx.Memo(d, func() (any, error) {
		return d.run(patient)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*ex.Ailment), nil
}

func (d *delegate[P, D]) run(patient P) ([]*ex.Ailment, error) {
	derived, err := d.reducer.compute(patient)
	if err != nil {
		return nil, ex.NewFault(ex.ErrComputation, "", d.reducer.name, err)
	}

	checks := d.reducer.checks
	out := make([]*ex.Ailment, len(checks))
	for i, c := range checks {
		a, err := check(c.rule, derived)
		if err != nil {
			return nil, ruleFault(c.property, ruleID(c.rule), err)
		}
		out[i] = attribute(a, c.property)
	}
	return out, nil
}

// shadow is the per-property view of a delegate's outcomes.
type shadow[P, D any] struct {
	delegate *delegate[P, D]
	index    int
}

func (s *shadow[P, D]) sharedCheck() sharedCheck[D] {
	return s.delegate.reducer.checks[s.index]
}

func (s *shadow[P, D]) Property() string {
	return s.sharedCheck().property
}

func (s *shadow[P, D]) Test(rctx *Context, patient P) (bool, error) {
	out, err := s.delegate.outcomes(rctx, patient)
	if err != nil {
		return false, err
	}
	return out[s.index] == nil, nil
}

func (s *shadow[P, D]) Apply(rctx *Context, patient P) (*ex.Ailment, error) {
	out, err := s.delegate.outcomes(rctx, patient)
	if err != nil {
		return nil, err
	}
	// Copy so callers never alias the memoized outcome.
	return attribute(out[s.index], s.Property()), nil
}

// PeekAilment describes this property's check, not the shared computation.
func (s *shadow[P, D]) PeekAilment() ex.Ailment {
	c := s.sharedCheck()
	return c.rule.PeekAilment().WithProperty(c.property)
}

func (s *shadow[P, D]) Params() ex.Params {
	return s.sharedCheck().rule.Params()
}
