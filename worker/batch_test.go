package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/gofhir/examiner"
)

func TestBatchExaminer_Empty(t *testing.T) {
	m := &mockExaminer{}
	batch := NewBatchExaminer(m.Examine, 4).ExamineBatch(context.Background(), nil)

	assert.Empty(t, batch.Results)
	assert.Zero(t, batch.TotalJobs)
}

func TestBatchExaminer_PreservesOrder(t *testing.T) {
	tests := []struct {
		name     string
		patients []int
	}{
		{"sequential", []int{-1, 1}},
		{"parallel", []int{-1, 2, -3, 4, -5, 6, -7, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockExaminer{}
			batch := NewBatchExaminer(m.Examine, 3).ExamineBatch(context.Background(), tt.patients)

			require.Len(t, batch.Results, len(tt.patients))
			for i, p := range tt.patients {
				r := batch.Results[i]
				require.NoError(t, r.Error)
				assert.Equal(t, p < 0, !r.Report.Clean(), "patient %d", p)
			}
			assert.Equal(t, len(tt.patients), batch.CompletedJobs)
			assert.Equal(t, int32(len(tt.patients)), m.callCount.Load())
		})
	}
}

func TestBatchExaminer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &mockExaminer{}
	batch := NewBatchExaminer(m.Examine, 2).ExamineBatch(ctx, []int{1, 2, 3, 4})

	require.Len(t, batch.Results, 4)
	assert.Len(t, batch.Faults(), 4)
	assert.ErrorIs(t, batch.Results[0].Error, ex.ErrCancelled)
	assert.Zero(t, m.callCount.Load())
}

func TestBatchExaminer_KeepsJobIDs(t *testing.T) {
	m := &mockExaminer{}
	jobs := []Job[int]{{ID: "a", Patient: 1}, {ID: "b", Patient: -1}, {ID: "c", Patient: 2}}

	batch := NewBatchExaminer(m.Examine, 2).Run(context.Background(), jobs)
	require.Len(t, batch.Results, 3)
	assert.Equal(t, "a", batch.Results[0].ID)
	assert.Equal(t, "b", batch.Results[1].ID)
	assert.Equal(t, "c", batch.Results[2].ID)
}

func TestExamineBatch(t *testing.T) {
	m := &mockExaminer{}
	batch := ExamineBatch(context.Background(), m.Examine, []int{-1, -2, 3})
	assert.Equal(t, 2, batch.AilmentCount())
}
