package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Pool manages long-lived worker goroutines examining submitted jobs.
type Pool[P any] struct {
	workers    int
	jobsChan   chan Job[P]
	resultChan chan *JobResult
	examine    ExamineFunc[P]
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool

	// sendMu is held for reading around sends on jobsChan and for writing
	// around closing it.
	sendMu sync.RWMutex

	// Metrics
	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	jobsFailed    atomic.Uint64
	totalDuration atomic.Int64
}

// NewPool creates a new worker pool with the specified number of workers.
// If workers <= 0, it defaults to runtime.NumCPU().
func NewPool[P any](examine ExamineFunc[P], workers int) *Pool[P] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool[P]{
		workers:    workers,
		jobsChan:   make(chan Job[P], workers*2),
		resultChan: make(chan *JobResult, workers*2),
		examine:    examine,
		ctx:        ctx,
		cancel:     cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// Submit submits a job to the pool for processing.
// This method blocks if the job queue is full.
func (p *Pool[P]) Submit(job Job[P]) bool {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()
	if p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// SubmitAsync submits a job without blocking.
// Returns false if the job queue is full or the pool is closed.
func (p *Pool[P]) SubmitAsync(job Job[P]) bool {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()
	if p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	default:
		return false
	}
}

// Results returns the channel for receiving job results.
func (p *Pool[P]) Results() <-chan *JobResult {
	return p.resultChan
}

// Close aborts pending jobs and waits for the workers to stop. Results not
// yet received are discarded.
func (p *Pool[P]) Close() {
	if p.closed.Swap(true) {
		return
	}

	// Cancel first so a Submit blocked on a full queue lets go of sendMu.
	p.cancel()

	// Drain results in background to prevent worker deadlock
	done := make(chan struct{})
	go func() {
		for range p.resultChan {
		}
		close(done)
	}()

	p.closeJobs()
	p.wg.Wait()
	close(p.resultChan)
	<-done
}

// closeJobs closes the job queue once no Submit is sending on it.
func (p *Pool[P]) closeJobs() {
	p.sendMu.Lock()
	close(p.jobsChan)
	p.sendMu.Unlock()
}

// CloseAndWait stops accepting jobs, lets the workers finish every queued
// job and returns the results not yet received through Results().
func (p *Pool[P]) CloseAndWait() *BatchResult {
	if p.closed.Swap(true) {
		return &BatchResult{}
	}

	// Workers keep draining the queue while results are collected below,
	// so a Submit blocked on a full queue eventually releases sendMu.
	go func() {
		p.closeJobs()
		p.wg.Wait()
		close(p.resultChan)
		p.cancel()
	}()

	results := make([]*JobResult, 0)
	failed := 0
	for result := range p.resultChan {
		results = append(results, result)
		if result.Error != nil {
			failed++
		}
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     int(p.jobsSubmitted.Load()),
		CompletedJobs: int(p.jobsCompleted.Load()),
		FailedJobs:    failed,
		TotalDuration: time.Duration(p.totalDuration.Load()),
	}
}

// Stats returns current pool statistics.
func (p *Pool[P]) Stats() PoolStats {
	return PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		JobsFailed:    p.jobsFailed.Load(),
		AvgDuration:   p.averageDuration(),
	}
}

// PoolStats contains pool statistics.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	JobsFailed    uint64
	AvgDuration   time.Duration
}

func (p *Pool[P]) worker() {
	defer p.wg.Done()

	for job := range p.jobsChan {
		var result *JobResult
		if p.ctx.Err() != nil {
			result = cancelledResult(p.ctx, job.ID)
		} else {
			result = run(p.ctx, p.examine, job)
		}

		p.jobsCompleted.Add(1)
		if result.Error != nil {
			p.jobsFailed.Add(1)
		}
		p.totalDuration.Add(int64(result.Duration))

		select {
		case <-p.ctx.Done():
			return
		case p.resultChan <- result:
		}
	}
}

func (p *Pool[P]) averageDuration() time.Duration {
	completed := p.jobsCompleted.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(uint64(p.totalDuration.Load()) / completed) //nolint:gosec // durations are positive
}

// ErrNoExaminer is returned when the pool has no examine function.
var ErrNoExaminer = poolError("no examine function configured")

type poolError string

func (e poolError) Error() string {
	return string(e)
}
