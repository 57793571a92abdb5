package examiner

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Examinations(t *testing.T) {
	m := NewMetrics()
	assert.Zero(t, m.ExaminationsTotal())
	assert.Zero(t, m.CleanRate())

	m.RecordExamination(10*time.Millisecond, 0)
	m.RecordExamination(30*time.Millisecond, 2)
	m.RecordExamination(20*time.Millisecond, 0)

	assert.Equal(t, uint64(3), m.ExaminationsTotal())
	assert.Equal(t, uint64(2), m.ExaminationsClean())
	assert.Equal(t, uint64(2), m.AilmentsTotal())
	assert.InDelta(t, 2.0/3.0, m.CleanRate(), 0.001)
}

func TestMetrics_ExaminationTime(t *testing.T) {
	m := NewMetrics()
	assert.Zero(t, m.AverageExaminationTime())
	assert.Zero(t, m.MinExaminationTime())

	m.RecordExamination(100*time.Millisecond, 0)
	m.RecordExamination(300*time.Millisecond, 0)

	assert.Equal(t, 200*time.Millisecond, m.AverageExaminationTime())
	assert.Equal(t, 100*time.Millisecond, m.MinExaminationTime())
	assert.Equal(t, 300*time.Millisecond, m.MaxExaminationTime())
	assert.Equal(t, 400*time.Millisecond, m.TotalExaminationTime())
}

func TestMetrics_MemoAndPool(t *testing.T) {
	m := NewMetrics()
	m.RecordMemoMiss()
	m.RecordMemoHit()
	m.RecordMemoHit()
	m.RecordMemoHit()
	m.RecordPoolAcquire()
	m.RecordPoolAcquire()
	m.RecordPoolRelease()

	assert.Equal(t, uint64(3), m.MemoHits())
	assert.Equal(t, uint64(1), m.MemoMisses())
	assert.InDelta(t, 0.75, m.MemoHitRate(), 0.001)
	assert.Equal(t, int64(1), m.PoolLeaks())
}

func TestMetrics_Branches(t *testing.T) {
	m := NewMetrics()
	_, ok := m.BranchStats("names")
	assert.False(t, ok)

	m.RecordBranch("names", 10*time.Millisecond, 1)
	m.RecordBranch("names", 30*time.Millisecond, 2)
	m.RecordBranch("ages", time.Millisecond, 0)

	stats, ok := m.BranchStats("names")
	require.True(t, ok)
	assert.Equal(t, BranchStats{
		Name:        "names",
		Invocations: 2,
		TotalTime:   40 * time.Millisecond,
		AvgTime:     20 * time.Millisecond,
		Ailments:    3,
	}, stats)
	assert.Len(t, m.AllBranchStats(), 2)
}

func TestMetrics_SnapshotExportReset(t *testing.T) {
	m := NewMetrics()
	m.RecordExamination(time.Millisecond, 1)
	m.RecordFault()
	m.RecordBranch("b", time.Millisecond, 1)

	s := m.Snapshot()
	assert.Equal(t, uint64(1), s.ExaminationsTotal)
	assert.Equal(t, uint64(1), s.FaultsTotal)
	assert.Len(t, s.Branches, 1)
	assert.False(t, s.Timestamp.IsZero())

	exported := m.Export()
	assert.Equal(t, uint64(1), exported["faults_total"])
	assert.Equal(t, uint64(1), exported["ailments_total"])

	m.Reset()
	assert.Zero(t, m.ExaminationsTotal())
	assert.Zero(t, m.FaultsTotal())
	assert.Zero(t, m.MinExaminationTime())
	assert.Empty(t, m.AllBranchStats())
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordExamination(time.Microsecond, j%2)
				m.RecordMemoHit()
				m.RecordBranch("shared", time.Microsecond, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(5000), m.ExaminationsTotal())
	assert.Equal(t, uint64(2500), m.ExaminationsClean())
	assert.Equal(t, uint64(5000), m.MemoHits())
	stats, _ := m.BranchStats("shared")
	assert.Equal(t, uint64(5000), stats.Invocations)
}
