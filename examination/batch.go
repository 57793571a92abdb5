package examination

import (
	"context"
	"fmt"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/rule"
)

// Gate decides whether a batch descends into its children.
type Gate int

const (
	// GateAlways runs children regardless of the batch's own outcome.
	GateAlways Gate = iota

	// GateOnPass runs children only when the batch's own rules produced no
	// ailments, so deeper checks are skipped once a prerequisite failed.
	GateOnPass
)

// String returns the gate name.
func (g Gate) String() string {
	switch g {
	case GateAlways:
		return "always"
	case GateOnPass:
		return "on-pass"
	default:
		return fmt.Sprintf("Gate(%d)", int(g))
	}
}

// Batch is an execution batch: a group of rules plus child branches.
//
// Batch is immutable; the With methods return modified copies.
type Batch[P any] struct {
	name      string
	rules     rule.RuleSet[P]
	children  []Branch[P]
	condition rule.Predicate[P]
	gate      Gate
}

// NewBatch creates a batch that evaluates rules.
func NewBatch[P any](name string, rules rule.RuleSet[P]) *Batch[P] {
	return &Batch[P]{name: name, rules: rules}
}

// WithChildren returns a copy of the batch with children appended.
func (b *Batch[P]) WithChildren(children ...Branch[P]) *Batch[P] {
	for _, c := range children {
		if c == nil {
			panic(ex.ErrNilRule)
		}
	}
	out := *b
	out.children = make([]Branch[P], 0, len(b.children)+len(children))
	out.children = append(out.children, b.children...)
	out.children = append(out.children, children...)
	return &out
}

// WithCondition returns a copy of the batch that is skipped entirely when
// condition is false for the patient.
func (b *Batch[P]) WithCondition(condition rule.Predicate[P]) *Batch[P] {
	out := *b
	out.condition = condition
	return &out
}

// WithGate returns a copy of the batch using gate.
func (b *Batch[P]) WithGate(gate Gate) *Batch[P] {
	out := *b
	out.gate = gate
	return &out
}

// Name returns the batch name.
func (b *Batch[P]) Name() string {
	return b.name
}

// Rules returns the batch's own rules.
func (b *Batch[P]) Rules() rule.RuleSet[P] {
	return b.rules
}

// Children returns a copy of the child branches.
func (b *Batch[P]) Children() []Branch[P] {
	out := make([]Branch[P], len(b.children))
	copy(out, b.children)
	return out
}

// Perform evaluates the batch's rules, then its children according to the
// gate. Children run sequentially and all of them run; a fault in any of
// them aborts the batch.
func (b *Batch[P]) Perform(ctx context.Context, rctx *rule.Context, patient P) ([]ex.Ailment, error) {
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	if b.condition != nil && !b.condition(patient) {
		return nil, nil
	}

	ailments, err := b.rules.Evaluate(rctx, patient)
	if err != nil {
		return nil, err
	}
	if b.gate == GateOnPass && len(ailments) > 0 {
		return ailments, nil
	}

	for _, child := range b.children {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		out, err := child.Perform(ctx, rctx, patient)
		if err != nil {
			return nil, fmt.Errorf("branch %q: %w", child.Name(), err)
		}
		ailments = append(ailments, out...)
	}
	return ailments, nil
}

// Describe lists the ailment templates of the batch and its children.
func (b *Batch[P]) Describe() []ex.Ailment {
	out := b.rules.Describe()
	for _, child := range b.children {
		if d, ok := child.(Describer); ok {
			out = append(out, d.Describe()...)
		}
	}
	return out
}
