package worker

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// BatchExaminer examines a fixed batch of patients in parallel, keeping
// results in input order.
type BatchExaminer[P any] struct {
	examine ExamineFunc[P]
	workers int
}

// NewBatchExaminer creates a new batch examiner.
func NewBatchExaminer[P any](examine ExamineFunc[P], workers int) *BatchExaminer[P] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchExaminer[P]{
		examine: examine,
		workers: workers,
	}
}

// ExamineBatch examines every patient. Results[i] always belongs to
// patients[i]; patients not reached before ctx ends get an ErrCancelled
// fault.
func (be *BatchExaminer[P]) ExamineBatch(ctx context.Context, patients []P) *BatchResult {
	jobs := make([]Job[P], len(patients))
	for i, p := range patients {
		jobs[i] = NewJob(p)
	}
	return be.Run(ctx, jobs)
}

// Run processes jobs, keeping their IDs.
func (be *BatchExaminer[P]) Run(ctx context.Context, jobs []Job[P]) *BatchResult {
	if len(jobs) == 0 {
		return &BatchResult{Results: make([]*JobResult, 0)}
	}

	var results []*JobResult
	// For small batches, don't use parallelism
	if len(jobs) <= 2 || be.workers == 1 {
		results = be.runSequential(ctx, jobs)
	} else {
		results = be.runParallel(ctx, jobs)
	}

	return summarize(results)
}

func (be *BatchExaminer[P]) runSequential(ctx context.Context, jobs []Job[P]) []*JobResult {
	results := make([]*JobResult, len(jobs))
	for i, job := range jobs {
		if ctx.Err() != nil {
			results[i] = cancelledResult(ctx, job.ID)
			continue
		}
		results[i] = run(ctx, be.examine, job)
	}
	return results
}

func (be *BatchExaminer[P]) runParallel(ctx context.Context, jobs []Job[P]) []*JobResult {
	numWorkers := min(be.workers, len(jobs))

	indexes := make(chan int, len(jobs))
	for i := range jobs {
		indexes <- i
	}
	close(indexes)

	// Each worker writes only its own indexes.
	results := make([]*JobResult, len(jobs))

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				if ctx.Err() != nil {
					results[i] = cancelledResult(ctx, jobs[i].ID)
					continue
				}
				results[i] = run(ctx, be.examine, jobs[i])
			}
		}()
	}
	wg.Wait()

	return results
}

func summarize(results []*JobResult) *BatchResult {
	br := &BatchResult{
		Results:   results,
		TotalJobs: len(results),
	}
	var total time.Duration
	for _, r := range results {
		br.CompletedJobs++
		if r.Error != nil {
			br.FailedJobs++
		}
		total += r.Duration
	}
	br.TotalDuration = total
	return br
}

// ExamineBatch is a convenience function for batch examination.
func ExamineBatch[P any](ctx context.Context, examine ExamineFunc[P], patients []P) *BatchResult {
	return NewBatchExaminer(examine, runtime.NumCPU()).ExamineBatch(ctx, patients)
}
