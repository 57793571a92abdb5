package rule

import (
	ex "github.com/gofhir/examiner"
)

// PropertyRule is a check attributed to a named property of a patient of
// type P. The property name never changes for the lifetime of the rule.
//
// Every evaluation takes the call scope of the current examination so
// rules that share work (see Reducer) can find it.
type PropertyRule[P any] interface {
	// Property returns the property the rule's failures are attributed to.
	Property() string

	// Test reports whether the patient passes.
	Test(rctx *Context, patient P) (bool, error)

	// Apply returns the ailment for the patient, or nil when it passes.
	// A non-nil error is an evaluation fault, never a validation failure.
	Apply(rctx *Context, patient P) (*ex.Ailment, error)

	// PeekAilment describes the check independently of any patient.
	PeekAilment() ex.Ailment

	// Params returns the parameters of the underlying check.
	Params() ex.Params
}

// Accessor extracts a property value from a patient. An error means the
// value could not be extracted at all.
type Accessor[P, V any] func(P) (V, error)

// Getter lifts an infallible getter into an Accessor.
func Getter[P, V any](get func(P) V) Accessor[P, V] {
	if get == nil {
		panic(ex.ErrNilRule)
	}
	return func(p P) (V, error) {
		return get(p), nil
	}
}

// propertyRule binds a Rule over a property value to the patient.
type propertyRule[P, V any] struct {
	property string
	get      Accessor[P, V]
	rule     Rule[V]
}

// For creates a PropertyRule checking the value returned by get.
func For[P, V any](property string, get func(P) V, r Rule[V]) PropertyRule[P] {
	return ForE(property, Getter(get), r)
}

// ForE creates a PropertyRule with a fallible accessor. Accessor errors are
// returned as ErrExtraction faults.
func ForE[P, V any](property string, get Accessor[P, V], r Rule[V]) PropertyRule[P] {
	if get == nil || r == nil {
		panic(ex.ErrNilRule)
	}
	return &propertyRule[P, V]{property: property, get: get, rule: r}
}

// Property returns the fixed property name.
func (r *propertyRule[P, V]) Property() string {
	return r.property
}

func (r *propertyRule[P, V]) extract(patient P) (V, error) {
	v, err := r.get(patient)
	if err != nil {
		return v, ex.NewFault(ex.ErrExtraction, r.property, ruleID(r.rule), err)
	}
	return v, nil
}

// Test extracts the property and tests it.
func (r *propertyRule[P, V]) Test(_ *Context, patient P) (bool, error) {
	v, err := r.extract(patient)
	if err != nil {
		return false, err
	}
	ok, err := test(r.rule, v)
	if err != nil {
		return false, ruleFault(r.property, ruleID(r.rule), err)
	}
	return ok, nil
}

// Apply extracts the property and applies the rule, attributing any
// ailment to the property.
func (r *propertyRule[P, V]) Apply(_ *Context, patient P) (*ex.Ailment, error) {
	v, err := r.extract(patient)
	if err != nil {
		return nil, err
	}
	a, err := check(r.rule, v)
	if err != nil {
		return nil, ruleFault(r.property, ruleID(r.rule), err)
	}
	return attribute(a, r.property), nil
}

// PeekAilment passes through the inner rule's template.
func (r *propertyRule[P, V]) PeekAilment() ex.Ailment {
	return r.rule.PeekAilment()
}

// Params passes through the inner rule's parameters.
func (r *propertyRule[P, V]) Params() ex.Params {
	return r.rule.Params()
}

// attribute returns a copy of a attributed to property, or nil.
func attribute(a *ex.Ailment, property string) *ex.Ailment {
	if a == nil {
		return nil
	}
	out := a.WithProperty(property)
	return &out
}

// ruleFault classifies err as a rule fault unless it already is a fault.
func ruleFault(property, rule string, err error) error {
	if ex.IsFault(err) {
		return err
	}
	return ex.NewFault(ex.ErrRuleFault, property, rule, err)
}
