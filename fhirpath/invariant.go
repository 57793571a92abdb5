package fhirpath

import (
	"fmt"

	fp "github.com/gofhir/fhirpath"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/rule"
)

// Constraint is a FHIRPath invariant as declared in a profile.
type Constraint struct {
	// Key identifies the invariant (e.g. "pat-1"). It becomes the rule id.
	Key string `yaml:"key" json:"key"`

	// Expression must evaluate to true for valid resources.
	Expression string `yaml:"expression" json:"expression"`

	// Human is the human-readable description.
	Human string `yaml:"human,omitempty" json:"human,omitempty"`
}

// Invariant is a leaf rule backed by a compiled FHIRPath expression.
//
// Evaluation errors are reported through Check, so a property rule built on
// an Invariant aborts the examination instead of reporting an ailment.
// Test and Apply, which cannot return errors, treat them as failures.
type Invariant[V any] struct {
	constraint Constraint
	compiled   *fp.Expression
}

var _ rule.Checker[[]byte] = (*Invariant[[]byte])(nil)

// NewInvariant compiles c through ev. It fails when the expression does not
// compile.
func NewInvariant[V any](ev *Evaluator, c Constraint) (*Invariant[V], error) {
	if c.Key == "" {
		return nil, fmt.Errorf("invariant with expression %q has no key", c.Expression)
	}
	compiled, err := ev.Compile(c.Expression)
	if err != nil {
		return nil, fmt.Errorf("invariant %s: %w", c.Key, err)
	}
	return &Invariant[V]{constraint: c, compiled: compiled}, nil
}

// Constraint returns the invariant's declaration.
func (i *Invariant[V]) Constraint() Constraint {
	return i.constraint
}

// Check evaluates the invariant.
func (i *Invariant[V]) Check(value V) (*ex.Ailment, error) {
	ok, err := evaluate(i.compiled, i.constraint.Expression, value)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}
	a := i.PeekAilment()
	return &a, nil
}

// Test reports whether the invariant holds.
func (i *Invariant[V]) Test(value V) bool {
	a, err := i.Check(value)
	return err == nil && a == nil
}

// Apply returns the invariant's ailment when it does not hold.
func (i *Invariant[V]) Apply(value V) *ex.Ailment {
	a, err := i.Check(value)
	if err != nil {
		peek := i.PeekAilment()
		return &peek
	}
	return a
}

// PeekAilment returns the ailment template.
func (i *Invariant[V]) PeekAilment() ex.Ailment {
	return ex.Ailment{Rule: i.constraint.Key, Params: i.Params()}
}

// Params returns the expression and, when set, the human description.
func (i *Invariant[V]) Params() ex.Params {
	params := ex.Params{"expression": i.constraint.Expression}
	if i.constraint.Human != "" {
		params["human"] = i.constraint.Human
	}
	return params
}

// Invariants compiles every constraint and wraps them as rules over the
// resource attributed to property.
func Invariants[P, V any](ev *Evaluator, property string, get func(P) V, constraints ...Constraint) (rule.RuleSet[P], error) {
	out := make([]rule.PropertyRule[P], 0, len(constraints))
	for _, c := range constraints {
		inv, err := NewInvariant[V](ev, c)
		if err != nil {
			return rule.RuleSet[P]{}, err
		}
		out = append(out, rule.For[P, V](property, get, inv))
	}
	return rule.NewRuleSet(out...), nil
}
