package examiner

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks examination metrics using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	// Examination counts
	examinationsTotal atomic.Uint64
	examinationsClean atomic.Uint64
	faultsTotal       atomic.Uint64

	// Timing (stored as nanoseconds)
	examinationTimeTotal atomic.Uint64
	examinationTimeMin   atomic.Uint64
	examinationTimeMax   atomic.Uint64

	// Shared computation memo
	memoHits   atomic.Uint64
	memoMisses atomic.Uint64

	// Pool metrics
	poolAcquires atomic.Uint64
	poolReleases atomic.Uint64

	// Ailments reported (after deduplication)
	ailmentsTotal atomic.Uint64

	// Per-branch timing
	branchTiming sync.Map // map[string]*branchMetrics
}

// branchMetrics tracks metrics for a single named branch.
type branchMetrics struct {
	invocations atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
	ailments    atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.examinationTimeMin.Store(^uint64(0))
	return m
}

// --- Recording Methods ---

// RecordExamination records a completed examination.
func (m *Metrics) RecordExamination(duration time.Duration, ailments int) {
	m.examinationsTotal.Add(1)
	if ailments == 0 {
		m.examinationsClean.Add(1)
	}
	m.ailmentsTotal.Add(uint64(ailments)) //nolint:gosec // ailment counts are never negative

	ns := uint64(duration.Nanoseconds()) //nolint:gosec // durations measured with time.Since are positive
	m.examinationTimeTotal.Add(ns)

	for {
		old := m.examinationTimeMin.Load()
		if ns >= old || m.examinationTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.examinationTimeMax.Load()
		if ns <= old || m.examinationTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordFault records an examination aborted by an evaluation fault.
func (m *Metrics) RecordFault() {
	m.faultsTotal.Add(1)
}

// RecordMemoHit records a shadow rule served from the shared computation memo.
func (m *Metrics) RecordMemoHit() {
	m.memoHits.Add(1)
}

// RecordMemoMiss records a shared computation actually being run.
func (m *Metrics) RecordMemoMiss() {
	m.memoMisses.Add(1)
}

// RecordPoolAcquire records a pool acquire operation.
func (m *Metrics) RecordPoolAcquire() {
	m.poolAcquires.Add(1)
}

// RecordPoolRelease records a pool release operation.
func (m *Metrics) RecordPoolRelease() {
	m.poolReleases.Add(1)
}

// RecordBranch records one run of a named branch.
func (m *Metrics) RecordBranch(name string, duration time.Duration, ailments int) {
	bm := m.getOrCreateBranchMetrics(name)
	bm.invocations.Add(1)
	bm.totalTime.Add(uint64(duration.Nanoseconds())) //nolint:gosec // positive duration
	bm.ailments.Add(uint64(ailments))                //nolint:gosec // never negative
}

func (m *Metrics) getOrCreateBranchMetrics(name string) *branchMetrics {
	if v, ok := m.branchTiming.Load(name); ok {
		return v.(*branchMetrics)
	}
	actual, _ := m.branchTiming.LoadOrStore(name, &branchMetrics{})
	return actual.(*branchMetrics)
}

// --- Query Methods ---

// ExaminationsTotal returns the number of completed examinations.
func (m *Metrics) ExaminationsTotal() uint64 {
	return m.examinationsTotal.Load()
}

// ExaminationsClean returns the number of examinations without ailments.
func (m *Metrics) ExaminationsClean() uint64 {
	return m.examinationsClean.Load()
}

// CleanRate returns the share of clean examinations (0.0 to 1.0).
func (m *Metrics) CleanRate() float64 {
	total := m.examinationsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.examinationsClean.Load()) / float64(total)
}

// FaultsTotal returns the number of aborted examinations.
func (m *Metrics) FaultsTotal() uint64 {
	return m.faultsTotal.Load()
}

// AilmentsTotal returns the number of ailments reported.
func (m *Metrics) AilmentsTotal() uint64 {
	return m.ailmentsTotal.Load()
}

// AverageExaminationTime returns the average examination duration.
func (m *Metrics) AverageExaminationTime() time.Duration {
	total := m.examinationsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.examinationTimeTotal.Load() / total) //nolint:gosec // fits int64
}

// TotalExaminationTime returns the summed duration of all examinations.
func (m *Metrics) TotalExaminationTime() time.Duration {
	return time.Duration(m.examinationTimeTotal.Load()) //nolint:gosec // fits int64
}

// MinExaminationTime returns the fastest examination.
func (m *Metrics) MinExaminationTime() time.Duration {
	v := m.examinationTimeMin.Load()
	if v == ^uint64(0) {
		return 0
	}
	return time.Duration(v) //nolint:gosec // fits int64
}

// MaxExaminationTime returns the slowest examination.
func (m *Metrics) MaxExaminationTime() time.Duration {
	return time.Duration(m.examinationTimeMax.Load()) //nolint:gosec // fits int64
}

// MemoHits returns how many shadow evaluations reused a shared computation.
func (m *Metrics) MemoHits() uint64 {
	return m.memoHits.Load()
}

// MemoMisses returns how many shared computations actually ran.
func (m *Metrics) MemoMisses() uint64 {
	return m.memoMisses.Load()
}

// MemoHitRate returns the memo hit rate (0.0 to 1.0).
func (m *Metrics) MemoHitRate() float64 {
	hits := m.memoHits.Load()
	total := hits + m.memoMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// PoolLeaks returns potential pool leaks (acquires - releases).
func (m *Metrics) PoolLeaks() int64 {
	return int64(m.poolAcquires.Load()) - int64(m.poolReleases.Load()) //nolint:gosec // counters won't overflow int64
}

// BranchStats holds statistics for one named branch.
type BranchStats struct {
	Name        string        `json:"name"`
	Invocations uint64        `json:"invocations"`
	TotalTime   time.Duration `json:"total_time"`
	AvgTime     time.Duration `json:"avg_time"`
	Ailments    uint64        `json:"ailments"`
}

func (bm *branchMetrics) stats(name string) BranchStats {
	invocations := bm.invocations.Load()
	total := bm.totalTime.Load()
	var avg time.Duration
	if invocations > 0 {
		avg = time.Duration(total / invocations) //nolint:gosec // fits int64
	}
	return BranchStats{
		Name:        name,
		Invocations: invocations,
		TotalTime:   time.Duration(total), //nolint:gosec // fits int64
		AvgTime:     avg,
		Ailments:    bm.ailments.Load(),
	}
}

// BranchStats returns statistics for a specific branch.
func (m *Metrics) BranchStats(name string) (BranchStats, bool) {
	v, ok := m.branchTiming.Load(name)
	if !ok {
		return BranchStats{Name: name}, false
	}
	return v.(*branchMetrics).stats(name), true
}

// AllBranchStats returns statistics for all branches.
func (m *Metrics) AllBranchStats() []BranchStats {
	var stats []BranchStats
	m.branchTiming.Range(func(key, value any) bool {
		stats = append(stats, value.(*branchMetrics).stats(key.(string)))
		return true
	})
	return stats
}

// --- Export Methods ---

// Snapshot represents a point-in-time snapshot of all metrics.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	ExaminationsTotal uint64  `json:"examinations_total"`
	ExaminationsClean uint64  `json:"examinations_clean"`
	CleanRate         float64 `json:"clean_rate"`
	FaultsTotal       uint64  `json:"faults_total"`
	AilmentsTotal     uint64  `json:"ailments_total"`

	AvgExaminationTimeNs uint64 `json:"avg_examination_time_ns"`
	MinExaminationTimeNs uint64 `json:"min_examination_time_ns"`
	MaxExaminationTimeNs uint64 `json:"max_examination_time_ns"`

	MemoHits    uint64  `json:"memo_hits"`
	MemoMisses  uint64  `json:"memo_misses"`
	MemoHitRate float64 `json:"memo_hit_rate"`

	PoolLeaks int64 `json:"pool_leaks"`

	Branches []BranchStats `json:"branches,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	minTime := m.examinationTimeMin.Load()
	if minTime == ^uint64(0) {
		minTime = 0
	}
	var avg uint64
	if total := m.examinationsTotal.Load(); total > 0 {
		avg = m.examinationTimeTotal.Load() / total
	}

	return Snapshot{
		Timestamp:            time.Now(),
		ExaminationsTotal:    m.examinationsTotal.Load(),
		ExaminationsClean:    m.examinationsClean.Load(),
		CleanRate:            m.CleanRate(),
		FaultsTotal:          m.faultsTotal.Load(),
		AilmentsTotal:        m.ailmentsTotal.Load(),
		AvgExaminationTimeNs: avg,
		MinExaminationTimeNs: minTime,
		MaxExaminationTimeNs: m.examinationTimeMax.Load(),
		MemoHits:             m.memoHits.Load(),
		MemoMisses:           m.memoMisses.Load(),
		MemoHitRate:          m.MemoHitRate(),
		PoolLeaks:            m.PoolLeaks(),
		Branches:             m.AllBranchStats(),
	}
}

// Export returns metrics as a flat map for external systems.
func (m *Metrics) Export() map[string]any {
	s := m.Snapshot()
	return map[string]any{
		"examinations_total":      s.ExaminationsTotal,
		"examinations_clean":      s.ExaminationsClean,
		"clean_rate":              s.CleanRate,
		"faults_total":            s.FaultsTotal,
		"ailments_total":          s.AilmentsTotal,
		"avg_examination_time_ns": s.AvgExaminationTimeNs,
		"min_examination_time_ns": s.MinExaminationTimeNs,
		"max_examination_time_ns": s.MaxExaminationTimeNs,
		"memo_hits":               s.MemoHits,
		"memo_misses":             s.MemoMisses,
		"memo_hit_rate":           s.MemoHitRate,
		"pool_leaks":              s.PoolLeaks,
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.examinationsTotal.Store(0)
	m.examinationsClean.Store(0)
	m.faultsTotal.Store(0)
	m.ailmentsTotal.Store(0)
	m.examinationTimeTotal.Store(0)
	m.examinationTimeMin.Store(^uint64(0))
	m.examinationTimeMax.Store(0)
	m.memoHits.Store(0)
	m.memoMisses.Store(0)
	m.poolAcquires.Store(0)
	m.poolReleases.Store(0)

	m.branchTiming.Range(func(key, _ any) bool {
		m.branchTiming.Delete(key)
		return true
	})
}
