package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	ex "github.com/gofhir/examiner"
)

// ExamineFunc examines a single patient.
type ExamineFunc[P any] func(ctx context.Context, patient P) (*ex.Report, error)

// Job represents an examination job to be processed by a worker.
type Job[P any] struct {
	// ID is a unique identifier for this job.
	ID string

	// Patient is the value to examine.
	Patient P
}

// NewJob creates a job with a random ID.
func NewJob[P any](patient P) Job[P] {
	return Job[P]{ID: uuid.NewString(), Patient: patient}
}

// JobResult represents the result of an examination job.
type JobResult struct {
	// ID matches the Job.ID that produced this result.
	ID string

	// Report is nil when Error is set.
	Report *ex.Report

	// Error is the fault that aborted the examination, if any.
	Error error

	// Duration is the time taken to examine.
	Duration time.Duration
}

// BatchResult aggregates results from multiple jobs.
type BatchResult struct {
	// Results contains all job results.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs completed (including faults).
	CompletedJobs int

	// FailedJobs is the number of jobs that ended in a fault.
	FailedJobs int

	// TotalDuration is the summed examination time of all jobs.
	TotalDuration time.Duration
}

// HasAilments reports whether any report contains ailments.
func (br *BatchResult) HasAilments() bool {
	for _, r := range br.Results {
		if r != nil && r.Report != nil && !r.Report.Clean() {
			return true
		}
	}
	return false
}

// AilmentCount returns the total number of ailments across all reports.
func (br *BatchResult) AilmentCount() int {
	count := 0
	for _, r := range br.Results {
		if r != nil && r.Report != nil {
			count += r.Report.Len()
		}
	}
	return count
}

// Faults returns the results that ended in a fault.
func (br *BatchResult) Faults() []*JobResult {
	var out []*JobResult
	for _, r := range br.Results {
		if r != nil && r.Error != nil {
			out = append(out, r)
		}
	}
	return out
}

func run[P any](ctx context.Context, examine ExamineFunc[P], job Job[P]) *JobResult {
	start := time.Now()
	result := &JobResult{ID: job.ID}

	if examine == nil {
		result.Error = ErrNoExaminer
		return result
	}

	result.Report, result.Error = examine(ctx, job.Patient)
	if result.Error != nil {
		result.Report = nil
	}
	result.Duration = time.Since(start)
	return result
}

func cancelledResult(ctx context.Context, id string) *JobResult {
	return &JobResult{
		ID:    id,
		Error: ex.NewFault(ex.ErrCancelled, "", "", ctx.Err()),
	}
}
