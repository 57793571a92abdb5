// Package engine provides the main examination driver.
package engine

import (
	"context"
	"time"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/examination"
	"github.com/gofhir/examiner/pkg/logger"
	"github.com/gofhir/examiner/rule"
	"github.com/gofhir/examiner/worker"
)

// Examiner runs rule sets and examination definitions against patients of
// type P. It owns the call scope of every examination, so callers never
// handle rule.Context themselves.
type Examiner[P any] struct {
	// Configuration
	options *ex.Options

	// Metrics
	metrics *ex.Metrics

	log *logger.Logger
}

// New creates a new Examiner with the given options.
func New[P any](opts ...ex.Option) *Examiner[P] {
	options := ex.DefaultOptions().Apply(opts...)

	return &Examiner[P]{
		options: options,
		metrics: ex.NewMetrics(),
		log:     logger.Default().With(logger.Component("engine")),
	}
}

// SetLogger replaces the examiner's logger.
func (e *Examiner[P]) SetLogger(l *logger.Logger) {
	if l != nil {
		e.log = l
	}
}

// Examine examines patient against sets. Each set becomes one branch of an
// ad-hoc definition; ailments found by several sets are reported once.
func (e *Examiner[P]) Examine(ctx context.Context, patient P, sets ...rule.RuleSet[P]) (*ex.Report, error) {
	return e.ExamineDefinition(ctx, patient, examination.FromRuleSets("examine", sets...))
}

// ExamineCombo examines patient against rules over the whole patient plus
// property-level sets. Whole-object failures are attributed to
// Options.ObjectName.
func (e *Examiner[P]) ExamineCombo(ctx context.Context, patient P, whole []rule.Rule[P], sets ...rule.RuleSet[P]) (*ex.Report, error) {
	all := make([]rule.RuleSet[P], 0, len(sets)+1)
	all = append(all, rule.Whole(e.options.ObjectName, whole...))
	all = append(all, sets...)
	return e.Examine(ctx, patient, all...)
}

// ExamineDefinition examines patient against def in a fresh call scope.
func (e *Examiner[P]) ExamineDefinition(ctx context.Context, patient P, def *examination.Definition[P]) (*ex.Report, error) {
	start := time.Now()

	if e.options.ParallelBranches {
		def = def.WithParallel(true)
	}
	if e.options.CollectMetrics && def.Metrics() == nil {
		def = def.WithMetrics(e.metrics)
	}

	rctx := e.acquire()
	defer e.release(rctx)
	id := rctx.ID

	report, err := def.ApplyWithin(ctx, rctx, patient)
	if err != nil {
		if e.options.CollectMetrics {
			e.metrics.RecordFault()
		}
		e.log.Warn("examination aborted",
			logger.ExaminationID(id),
			logger.Source(def.Name()),
			logger.Err(err),
		)
		return nil, err
	}

	duration := time.Since(start)
	if e.options.CollectMetrics {
		e.metrics.RecordExamination(duration, report.Len())
	}
	e.log.Debug("examination complete",
		logger.ExaminationID(id),
		logger.Source(def.Name()),
		logger.Ailments(report.Len()),
		logger.Duration(duration),
	)
	return report, nil
}

// ExamineBatch examines patients in parallel against def. Results keep the
// order of patients.
func (e *Examiner[P]) ExamineBatch(ctx context.Context, patients []P, def *examination.Definition[P]) *worker.BatchResult {
	be := worker.NewBatchExaminer(func(ctx context.Context, patient P) (*ex.Report, error) {
		return e.ExamineDefinition(ctx, patient, def)
	}, e.options.WorkerCount)

	batch := be.ExamineBatch(ctx, patients)
	e.log.Info("batch complete",
		logger.Source(def.Name()),
		logger.Ailments(batch.AilmentCount()),
		logger.Duration(batch.TotalDuration),
	)
	return batch
}

// NewPool starts a long-lived worker pool examining jobs against def.
// The caller owns the pool and must close it.
func (e *Examiner[P]) NewPool(def *examination.Definition[P]) *worker.Pool[P] {
	return worker.NewPool(func(ctx context.Context, patient P) (*ex.Report, error) {
		return e.ExamineDefinition(ctx, patient, def)
	}, e.options.WorkerCount)
}

func (e *Examiner[P]) acquire() *rule.Context {
	if !e.options.EnablePooling {
		return rule.NewContext()
	}
	if e.options.CollectMetrics {
		e.metrics.RecordPoolAcquire()
	}
	return rule.AcquireContext()
}

func (e *Examiner[P]) release(rctx *rule.Context) {
	if !e.options.EnablePooling {
		return
	}
	if e.options.CollectMetrics {
		e.metrics.RecordPoolRelease()
	}
	rctx.Release()
}

// Metrics returns the examiner's metrics.
func (e *Examiner[P]) Metrics() *ex.Metrics {
	return e.metrics
}

// Options returns the examiner's options.
func (e *Examiner[P]) Options() *ex.Options {
	return e.options
}
