package telemetry

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/cache"
)

func recorded() *ex.Metrics {
	m := ex.NewMetrics()
	m.RecordExamination(2*time.Second, 0)
	m.RecordExamination(time.Second, 3)
	m.RecordFault()
	m.RecordMemoMiss()
	m.RecordMemoHit()
	m.RecordMemoHit()
	m.RecordBranch("identity", 500*time.Millisecond, 2)
	return m
}

func TestCollector_Examinations(t *testing.T) {
	c := NewCollector(recorded())

	expected := `
# HELP examiner_examinations_total Examinations completed.
# TYPE examiner_examinations_total counter
examiner_examinations_total 2
# HELP examiner_examinations_clean_total Examinations that reported no ailments.
# TYPE examiner_examinations_clean_total counter
examiner_examinations_clean_total 1
# HELP examiner_ailments_total Ailments reported across all examinations.
# TYPE examiner_ailments_total counter
examiner_ailments_total 3
# HELP examiner_faults_total Examinations aborted by an evaluation fault.
# TYPE examiner_faults_total counter
examiner_faults_total 1
# HELP examiner_examination_seconds_total Time spent examining.
# TYPE examiner_examination_seconds_total counter
examiner_examination_seconds_total 3
# HELP examiner_memo_hits_total Shared computation results reused within an examination.
# TYPE examiner_memo_hits_total counter
examiner_memo_hits_total 2
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"examiner_examinations_total",
		"examiner_examinations_clean_total",
		"examiner_ailments_total",
		"examiner_faults_total",
		"examiner_examination_seconds_total",
		"examiner_memo_hits_total",
	)
	assert.NoError(t, err)
}

func TestCollector_Branches(t *testing.T) {
	c := NewCollector(recorded(), WithNamespace("fhir"))

	expected := `
# HELP fhir_branch_ailments_total Ailments reported by each branch.
# TYPE fhir_branch_ailments_total counter
fhir_branch_ailments_total{branch="identity"} 2
# HELP fhir_branch_invocations_total Branch executions.
# TYPE fhir_branch_invocations_total counter
fhir_branch_invocations_total{branch="identity"} 1
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"fhir_branch_ailments_total", "fhir_branch_invocations_total")
	assert.NoError(t, err)
}

func TestCollector_Cache(t *testing.T) {
	lru := cache.New[string, int](2)
	lru.Set("a", 1)
	lru.Get("a")
	lru.Get("b")

	c := NewCollector(nil, WithCache("fhirpath", lru))

	assert.Equal(t, 4, testutil.CollectAndCount(c))
	expected := `
# HELP examiner_cache_hits_total Cache hits.
# TYPE examiner_cache_hits_total counter
examiner_cache_hits_total{cache="fhirpath"} 1
# HELP examiner_cache_misses_total Cache misses.
# TYPE examiner_cache_misses_total counter
examiner_cache_misses_total{cache="fhirpath"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"examiner_cache_hits_total", "examiner_cache_misses_total"))
}

func TestCollector_Registers(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(recorded())))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
