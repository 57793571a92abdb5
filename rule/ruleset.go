package rule

import (
	"iter"

	ex "github.com/gofhir/examiner"
)

// RuleSet is an ordered collection of PropertyRules over one patient type.
//
// RuleSet has value semantics: every operation returns a new set and never
// mutates its inputs, so sets can be shared freely between definitions and
// goroutines. The zero value is an empty set.
type RuleSet[P any] struct {
	rules []PropertyRule[P]
}

// NewRuleSet creates a RuleSet from rules in order.
func NewRuleSet[P any](rules ...PropertyRule[P]) RuleSet[P] {
	out := make([]PropertyRule[P], 0, len(rules))
	for _, r := range rules {
		if r == nil {
			panic(ex.ErrNilRule)
		}
		out = append(out, r)
	}
	return RuleSet[P]{rules: out}
}

// Len returns the number of rules in the set.
func (s RuleSet[P]) Len() int {
	return len(s.rules)
}

// At returns the rule at index i.
func (s RuleSet[P]) At(i int) PropertyRule[P] {
	return s.rules[i]
}

// Rules returns a copy of the rules in order.
func (s RuleSet[P]) Rules() []PropertyRule[P] {
	out := make([]PropertyRule[P], len(s.rules))
	copy(out, s.rules)
	return out
}

// All iterates over the rules with their positions.
func (s RuleSet[P]) All() iter.Seq2[int, PropertyRule[P]] {
	return func(yield func(int, PropertyRule[P]) bool) {
		for i, r := range s.rules {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Properties returns the distinct property names in first-seen order.
func (s RuleSet[P]) Properties() []string {
	seen := make(map[string]struct{}, len(s.rules))
	out := make([]string, 0, len(s.rules))
	for _, r := range s.rules {
		p := r.Property()
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// And merges two sets: the receiver's rules followed by other's, in order.
func (s RuleSet[P]) And(other RuleSet[P]) RuleSet[P] {
	out := make([]PropertyRule[P], 0, len(s.rules)+len(other.rules))
	out = append(out, s.rules...)
	out = append(out, other.rules...)
	return RuleSet[P]{rules: out}
}

// With returns a new set with rules appended.
func (s RuleSet[P]) With(rules ...PropertyRule[P]) RuleSet[P] {
	return s.And(NewRuleSet(rules...))
}

// AndShared merges the expansion of shared into the set.
func (s RuleSet[P]) AndShared(shared SharedRule[P]) RuleSet[P] {
	return s.And(OfShared(shared))
}

// Flatten concatenates several sets into one. No rule is dropped or
// duplicated; callers must not rely on the order across inputs.
func Flatten[P any](sets ...RuleSet[P]) RuleSet[P] {
	n := 0
	for _, s := range sets {
		n += len(s.rules)
	}
	out := make([]PropertyRule[P], 0, n)
	for _, s := range sets {
		out = append(out, s.rules...)
	}
	return RuleSet[P]{rules: out}
}

// Collect folds a sequence of rules into a set.
func Collect[P any](seq iter.Seq[PropertyRule[P]]) RuleSet[P] {
	var out []PropertyRule[P]
	for r := range seq {
		if r == nil {
			panic(ex.ErrNilRule)
		}
		out = append(out, r)
	}
	return RuleSet[P]{rules: out}
}

// Whole adapts rules over the entire patient into PropertyRules attributed
// to name. The accessor is the identity.
func Whole[P any](name string, rules ...Rule[P]) RuleSet[P] {
	out := make([]PropertyRule[P], 0, len(rules))
	for _, r := range rules {
		out = append(out, For(name, identity[P], r))
	}
	return RuleSet[P]{rules: out}
}

func identity[P any](p P) P {
	return p
}

// Reattribute attributes every rule in set to name.
//
// The rules' own property names are discarded: ailments they produce will
// all carry name, so callers lose per-property granularity.
func Reattribute[P any](name string, set RuleSet[P]) RuleSet[P] {
	out := make([]PropertyRule[P], 0, len(set.rules))
	for _, r := range set.rules {
		if ra, ok := r.(*reattributed[P]); ok {
			r = ra.inner
		}
		out = append(out, &reattributed[P]{name: name, inner: r})
	}
	return RuleSet[P]{rules: out}
}

type reattributed[P any] struct {
	name  string
	inner PropertyRule[P]
}

func (r *reattributed[P]) Property() string {
	return r.name
}

func (r *reattributed[P]) Test(rctx *Context, patient P) (bool, error) {
	return r.inner.Test(rctx, patient)
}

func (r *reattributed[P]) Apply(rctx *Context, patient P) (*ex.Ailment, error) {
	a, err := r.inner.Apply(rctx, patient)
	if err != nil {
		return nil, err
	}
	return attribute(a, r.name), nil
}

func (r *reattributed[P]) PeekAilment() ex.Ailment {
	return r.inner.PeekAilment()
}

func (r *reattributed[P]) Params() ex.Params {
	return r.inner.Params()
}

// Describe returns the ailment template of every rule, in order, attributed
// to the rule's property.
func (s RuleSet[P]) Describe() []ex.Ailment {
	out := make([]ex.Ailment, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r.PeekAilment().WithProperty(r.Property()))
	}
	return out
}

// Evaluate applies every rule to patient within rctx and returns the
// ailments produced, in rule order. The first fault aborts evaluation.
// A nil rctx gets a fresh call scope.
func (s RuleSet[P]) Evaluate(rctx *Context, patient P) ([]ex.Ailment, error) {
	if rctx == nil {
		rctx = NewContext()
	}
	var out []ex.Ailment
	for _, r := range s.rules {
		a, err := r.Apply(rctx, patient)
		if err != nil {
			return nil, err
		}
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

// Examine evaluates the set against patient in its own call scope and
// returns the deduplicated report.
func (s RuleSet[P]) Examine(patient P) (*ex.Report, error) {
	rctx := AcquireContext()
	defer rctx.Release()

	ailments, err := s.Evaluate(rctx, patient)
	if err != nil {
		return nil, err
	}

	report := ex.NewReport()
	report.ExaminationID = rctx.ID
	report.AddAll(ailments)
	return report, nil
}
