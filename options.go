package examiner

import (
	"runtime"
)

// DefaultObjectName is the property name whole-object rules are attributed to.
const DefaultObjectName = "object"

// Option configures an Examiner.
type Option func(*Options)

// Options holds all configuration for an Examiner.
type Options struct {
	// ObjectName attributes whole-object rules in ExamineCombo.
	ObjectName string

	// Execution
	ParallelBranches bool
	WorkerCount      int

	// Pooling of reports and call scopes
	EnablePooling bool

	// Metrics
	CollectMetrics bool

	// Cache sizes
	ExpressionCacheSize int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		ObjectName: DefaultObjectName,

		ParallelBranches: false,
		WorkerCount:      runtime.NumCPU(),

		EnablePooling:  true,
		CollectMetrics: true,

		ExpressionCacheSize: 256,
	}
}

// Apply applies opts on top of o and returns o.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithObjectName sets the name whole-object ailments are reported under.
func WithObjectName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.ObjectName = name
		}
	}
}

// WithParallelBranches runs the root branches of a definition concurrently.
func WithParallelBranches(enable bool) Option {
	return func(o *Options) {
		o.ParallelBranches = enable
	}
}

// WithWorkerCount sets the number of workers for batch examination.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithPooling enables or disables object pooling.
// Pooling reduces GC pressure but requires calling Release() on reports.
func WithPooling(enable bool) Option {
	return func(o *Options) {
		o.EnablePooling = enable
	}
}

// WithMetrics enables or disables metric collection.
func WithMetrics(enable bool) Option {
	return func(o *Options) {
		o.CollectMetrics = enable
	}
}

// WithExpressionCache sets the compiled expression cache size.
func WithExpressionCache(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ExpressionCacheSize = size
		}
	}
}

// --- Presets ---

// FastOptions returns options tuned for throughput.
func FastOptions() []Option {
	return []Option{
		WithParallelBranches(true),
		WithPooling(true),
		WithExpressionCache(2048),
	}
}

// DebugOptions returns options that keep every object around for inspection.
func DebugOptions() []Option {
	return []Option{
		WithParallelBranches(false),
		WithPooling(false),
		WithWorkerCount(1),
	}
}
