// Package telemetry exposes examiner metrics to Prometheus.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/cache"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "examiner"

// CacheSource reports statistics of a cache, such as a FHIRPath evaluator's
// compiled expression cache.
type CacheSource interface {
	Stats() cache.Stats
}

// Collector is a prometheus.Collector reading an examiner's Metrics at
// scrape time.
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(telemetry.NewCollector(examiner.Metrics(), telemetry.WithCache("fhirpath", ev)))
type Collector struct {
	metrics *ex.Metrics
	caches  map[string]CacheSource

	examinations *prometheus.Desc
	clean        *prometheus.Desc
	faults       *prometheus.Desc
	ailments     *prometheus.Desc
	seconds      *prometheus.Desc
	memoHits     *prometheus.Desc
	memoMisses   *prometheus.Desc
	poolLeaks    *prometheus.Desc

	branchInvocations *prometheus.Desc
	branchSeconds     *prometheus.Desc
	branchAilments    *prometheus.Desc

	cacheSize   *prometheus.Desc
	cacheHits   *prometheus.Desc
	cacheMisses *prometheus.Desc
	cacheEvicts *prometheus.Desc
}

// Option configures a Collector.
type Option func(*collectorConfig)

type collectorConfig struct {
	namespace string
	caches    map[string]CacheSource
}

// WithNamespace overrides DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(c *collectorConfig) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// WithCache adds a cache reported under the given name label.
func WithCache(name string, src CacheSource) Option {
	return func(c *collectorConfig) {
		if src != nil {
			c.caches[name] = src
		}
	}
}

// NewCollector creates a Collector over m.
func NewCollector(m *ex.Metrics, opts ...Option) *Collector {
	cfg := &collectorConfig{namespace: DefaultNamespace, caches: make(map[string]CacheSource)}
	for _, opt := range opts {
		opt(cfg)
	}
	ns := cfg.namespace

	return &Collector{
		metrics: m,
		caches:  cfg.caches,

		examinations: desc(ns, "examinations_total", "Examinations completed."),
		clean:        desc(ns, "examinations_clean_total", "Examinations that reported no ailments."),
		faults:       desc(ns, "faults_total", "Examinations aborted by an evaluation fault."),
		ailments:     desc(ns, "ailments_total", "Ailments reported across all examinations."),
		seconds:      desc(ns, "examination_seconds_total", "Time spent examining."),
		memoHits:     desc(ns, "memo_hits_total", "Shared computation results reused within an examination."),
		memoMisses:   desc(ns, "memo_misses_total", "Shared computations performed."),
		poolLeaks:    desc(ns, "pool_outstanding", "Pooled call scopes acquired and not yet released."),

		branchInvocations: desc(ns, "branch_invocations_total", "Branch executions.", "branch"),
		branchSeconds:     desc(ns, "branch_seconds_total", "Time spent in each branch.", "branch"),
		branchAilments:    desc(ns, "branch_ailments_total", "Ailments reported by each branch.", "branch"),

		cacheSize:   desc(ns, "cache_entries", "Entries held in the cache.", "cache"),
		cacheHits:   desc(ns, "cache_hits_total", "Cache hits.", "cache"),
		cacheMisses: desc(ns, "cache_misses_total", "Cache misses.", "cache"),
		cacheEvicts: desc(ns, "cache_evictions_total", "Cache evictions.", "cache"),
	}
}

func desc(ns, name, help string, labels ...string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(ns, "", name), help, labels, nil)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.examinations, c.clean, c.faults, c.ailments, c.seconds,
		c.memoHits, c.memoMisses, c.poolLeaks,
		c.branchInvocations, c.branchSeconds, c.branchAilments,
		c.cacheSize, c.cacheHits, c.cacheMisses, c.cacheEvicts,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.metrics != nil {
		c.collectExaminations(ch)
	}
	for name, src := range c.caches {
		s := src.Stats()
		ch <- prometheus.MustNewConstMetric(c.cacheSize, prometheus.GaugeValue, float64(s.Size), name)
		ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(s.Hits), name)
		ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(s.Misses), name)
		ch <- prometheus.MustNewConstMetric(c.cacheEvicts, prometheus.CounterValue, float64(s.Evicts), name)
	}
}

func (c *Collector) collectExaminations(ch chan<- prometheus.Metric) {
	m := c.metrics
	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}

	counter(c.examinations, float64(m.ExaminationsTotal()))
	counter(c.clean, float64(m.ExaminationsClean()))
	counter(c.faults, float64(m.FaultsTotal()))
	counter(c.ailments, float64(m.AilmentsTotal()))
	counter(c.seconds, m.TotalExaminationTime().Seconds())
	counter(c.memoHits, float64(m.MemoHits()))
	counter(c.memoMisses, float64(m.MemoMisses()))
	ch <- prometheus.MustNewConstMetric(c.poolLeaks, prometheus.GaugeValue, float64(m.PoolLeaks()))

	for _, b := range m.AllBranchStats() {
		counter(c.branchInvocations, float64(b.Invocations), b.Name)
		counter(c.branchSeconds, b.TotalTime.Seconds(), b.Name)
		counter(c.branchAilments, float64(b.Ailments), b.Name)
	}
}
