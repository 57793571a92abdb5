package examination

import (
	"context"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/rule"
)

// Branch is one node of an examination tree.
//
// Branches should be:
// - Stateless: per-examination state lives in the rule.Context
// - Thread-safe: the same branch may be performed for many patients at once
// - Fault-propagating: a non-nil error aborts the whole examination
type Branch[P any] interface {
	// Name identifies the branch in errors and metrics.
	Name() string

	// Perform examines the patient and returns the ailments found.
	Perform(ctx context.Context, rctx *rule.Context, patient P) ([]ex.Ailment, error)
}

// Describer is implemented by branches that can list the checks they run.
type Describer interface {
	Describe() []ex.Ailment
}

// BranchFunc is a function type that implements Branch.
// Useful for one-off checks that don't fit a RuleSet.
type BranchFunc[P any] struct {
	name string
	fn   func(ctx context.Context, rctx *rule.Context, patient P) ([]ex.Ailment, error)
}

// NewBranchFunc creates a Branch from a function.
func NewBranchFunc[P any](name string, fn func(ctx context.Context, rctx *rule.Context, patient P) ([]ex.Ailment, error)) Branch[P] {
	if fn == nil {
		panic(ex.ErrNilRule)
	}
	return &BranchFunc[P]{name: name, fn: fn}
}

// Name returns the branch name.
func (b *BranchFunc[P]) Name() string {
	return b.name
}

// Perform calls the wrapped function.
func (b *BranchFunc[P]) Perform(ctx context.Context, rctx *rule.Context, patient P) ([]ex.Ailment, error) {
	return b.fn(ctx, rctx, patient)
}

// ConditionalBranch wraps a branch with a condition on the patient.
type ConditionalBranch[P any] struct {
	branch    Branch[P]
	condition rule.Predicate[P]
}

// NewConditionalBranch creates a branch that only runs when condition holds.
func NewConditionalBranch[P any](branch Branch[P], condition rule.Predicate[P]) Branch[P] {
	if branch == nil {
		panic(ex.ErrNilRule)
	}
	return &ConditionalBranch[P]{branch: branch, condition: condition}
}

// Name returns the wrapped branch name.
func (b *ConditionalBranch[P]) Name() string {
	return b.branch.Name()
}

// Perform runs the branch if the condition is met.
func (b *ConditionalBranch[P]) Perform(ctx context.Context, rctx *rule.Context, patient P) ([]ex.Ailment, error) {
	if b.condition != nil && !b.condition(patient) {
		return nil, nil
	}
	return b.branch.Perform(ctx, rctx, patient)
}

// Describe describes the wrapped branch when it can.
func (b *ConditionalBranch[P]) Describe() []ex.Ailment {
	if d, ok := b.branch.(Describer); ok {
		return d.Describe()
	}
	return nil
}

// cancelled returns an ErrCancelled fault once ctx is done.
func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return ex.NewFault(ex.ErrCancelled, "", "", err)
	}
	return nil
}
