package examination

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/rule"
)

// Definition is the root of an examination tree.
//
// Applying a definition runs every root branch against the patient within
// one call scope and unions their ailments into a deduplicated report. All
// branches run even when some report ailments; the first fault aborts the
// examination and no report is returned.
type Definition[P any] struct {
	name     string
	branches []Branch[P]
	parallel bool
	metrics  *ex.Metrics
}

// NewDefinition creates a definition with the given root branches.
func NewDefinition[P any](name string, branches ...Branch[P]) *Definition[P] {
	for _, b := range branches {
		if b == nil {
			panic(ex.ErrNilRule)
		}
	}
	out := make([]Branch[P], len(branches))
	copy(out, branches)
	return &Definition[P]{name: name, branches: out}
}

// FromRuleSets creates a definition with one batch per rule set, named
// after the definition and the set's position.
func FromRuleSets[P any](name string, sets ...rule.RuleSet[P]) *Definition[P] {
	branches := make([]Branch[P], len(sets))
	for i, s := range sets {
		branches[i] = NewBatch(fmt.Sprintf("%s[%d]", name, i), s)
	}
	return NewDefinition(name, branches...)
}

// WithParallel returns a copy of the definition whose root branches run
// concurrently.
func (d *Definition[P]) WithParallel(parallel bool) *Definition[P] {
	out := *d
	out.parallel = parallel
	return &out
}

// WithMetrics returns a copy of the definition that records branch timings
// and memo usage into m.
func (d *Definition[P]) WithMetrics(m *ex.Metrics) *Definition[P] {
	out := *d
	out.metrics = m
	return &out
}

// Name returns the definition name.
func (d *Definition[P]) Name() string {
	return d.name
}

// Branches returns a copy of the root branches.
func (d *Definition[P]) Branches() []Branch[P] {
	out := make([]Branch[P], len(d.branches))
	copy(out, d.branches)
	return out
}

// Metrics returns the metrics the definition records into, if any.
func (d *Definition[P]) Metrics() *ex.Metrics {
	return d.metrics
}

// Describe lists the ailment templates of every describable branch.
func (d *Definition[P]) Describe() []ex.Ailment {
	var out []ex.Ailment
	for _, b := range d.branches {
		if desc, ok := b.(Describer); ok {
			out = append(out, desc.Describe()...)
		}
	}
	return out
}

// Apply examines patient in a fresh call scope.
func (d *Definition[P]) Apply(ctx context.Context, patient P) (*ex.Report, error) {
	rctx := rule.AcquireContext()
	defer rctx.Release()
	return d.ApplyWithin(ctx, rctx, patient)
}

// ApplyWithin examines patient inside an existing call scope. rctx must not
// have been used for a different patient. A nil rctx behaves like Apply.
func (d *Definition[P]) ApplyWithin(ctx context.Context, rctx *rule.Context, patient P) (*ex.Report, error) {
	if rctx == nil {
		return d.Apply(ctx, patient)
	}
	if d.metrics != nil {
		rctx.Metrics = d.metrics
	}

	report := ex.NewReport()
	report.ExaminationID = rctx.ID

	var err error
	if d.parallel && len(d.branches) > 1 {
		err = d.applyParallel(ctx, rctx, patient, report)
	} else {
		err = d.applySequential(ctx, rctx, patient, report)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// applySequential runs branches one at a time.
func (d *Definition[P]) applySequential(ctx context.Context, rctx *rule.Context, patient P, report *ex.Report) error {
	for _, b := range d.branches {
		if err := cancelled(ctx); err != nil {
			return err
		}
		ailments, err := d.perform(ctx, rctx, b, patient)
		if err != nil {
			return err
		}
		report.AddAll(ailments)
	}
	return nil
}

// applyParallel runs branches concurrently; the first fault cancels the rest.
func (d *Definition[P]) applyParallel(ctx context.Context, rctx *rule.Context, patient P, report *ex.Report) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range d.branches {
		g.Go(func() error {
			if err := cancelled(gctx); err != nil {
				return err
			}
			ailments, err := d.perform(gctx, rctx, b, patient)
			if err != nil {
				return err
			}
			report.AddAll(ailments)
			return nil
		})
	}
	return g.Wait()
}

// perform runs a single branch with timing.
func (d *Definition[P]) perform(ctx context.Context, rctx *rule.Context, b Branch[P], patient P) ([]ex.Ailment, error) {
	start := time.Now()
	ailments, err := b.Perform(ctx, rctx, patient)
	if err != nil {
		return nil, fmt.Errorf("branch %q: %w", b.Name(), err)
	}

	if d.metrics != nil {
		d.metrics.RecordBranch(b.Name(), time.Since(start), len(ailments))
	}
	return ailments, nil
}
