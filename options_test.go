package examiner

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, DefaultObjectName, opts.ObjectName)
	assert.False(t, opts.ParallelBranches)
	assert.Equal(t, runtime.NumCPU(), opts.WorkerCount)
	assert.True(t, opts.EnablePooling)
	assert.True(t, opts.CollectMetrics)
	assert.Equal(t, 256, opts.ExpressionCacheSize)
}

func TestOptions_Apply(t *testing.T) {
	opts := DefaultOptions().Apply(
		WithObjectName("patient"),
		WithParallelBranches(true),
		WithWorkerCount(4),
		WithPooling(false),
		WithMetrics(false),
		WithExpressionCache(32),
	)

	assert.Equal(t, "patient", opts.ObjectName)
	assert.True(t, opts.ParallelBranches)
	assert.Equal(t, 4, opts.WorkerCount)
	assert.False(t, opts.EnablePooling)
	assert.False(t, opts.CollectMetrics)
	assert.Equal(t, 32, opts.ExpressionCacheSize)
}

func TestOptions_IgnoreInvalidValues(t *testing.T) {
	opts := DefaultOptions().Apply(
		WithObjectName(""),
		WithWorkerCount(0),
		WithWorkerCount(-3),
		WithExpressionCache(0),
	)

	assert.Equal(t, DefaultObjectName, opts.ObjectName)
	assert.Equal(t, runtime.NumCPU(), opts.WorkerCount)
	assert.Equal(t, 256, opts.ExpressionCacheSize)
}

func TestPresets(t *testing.T) {
	fast := DefaultOptions().Apply(FastOptions()...)
	assert.True(t, fast.ParallelBranches)
	assert.True(t, fast.EnablePooling)
	assert.Equal(t, 2048, fast.ExpressionCacheSize)

	debug := DefaultOptions().Apply(DebugOptions()...)
	assert.False(t, debug.ParallelBranches)
	assert.False(t, debug.EnablePooling)
	assert.Equal(t, 1, debug.WorkerCount)
}
