package examiner

import (
	"encoding/json"
	"sort"
	"sync"
)

// Report is the outcome of one examination: the set of ailments found.
//
// Adding an ailment equal to one already present is a no-op, so failures
// reported by several branches collapse into one entry. Insertion order is
// kept only to make output deterministic; it carries no meaning.
// Use Release() to return it to the pool when done.
type Report struct {
	// ExaminationID correlates the report with logs and batch jobs.
	ExaminationID string

	ailments []Ailment

	// index buckets ailment positions by fingerprint.
	index map[uint64][]int

	// mu protects concurrent access during parallel branch execution
	mu sync.Mutex
}

// reportPool holds reusable Report instances.
var reportPool = sync.Pool{
	New: func() any {
		return &Report{
			ailments: make([]Ailment, 0, 16),
			index:    make(map[uint64][]int, 16),
		}
	},
}

// AcquireReport gets an empty Report from the pool.
func AcquireReport() *Report {
	r := reportPool.Get().(*Report)
	r.Reset()
	return r
}

// Release returns the Report to the pool.
// After calling Release, the Report should not be used.
func (r *Report) Release() {
	if r == nil {
		return
	}
	// Don't keep reports that grew unusually large
	if cap(r.ailments) <= 1024 {
		reportPool.Put(r)
	}
}

// Reset clears the report for reuse.
func (r *Report) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ExaminationID = ""
	r.ailments = r.ailments[:0]
	for k := range r.index {
		delete(r.index, k)
	}
}

// NewReport creates a new (non-pooled) report.
func NewReport() *Report {
	return &Report{
		ailments: make([]Ailment, 0, 8),
		index:    make(map[uint64][]int, 8),
	}
}

// Add inserts an ailment unless an equal one is already present.
// It returns true if the report grew. This method is thread-safe.
func (r *Report) Add(a Ailment) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(a)
}

func (r *Report) addLocked(a Ailment) bool {
	fp := a.Fingerprint()
	for _, i := range r.index[fp] {
		if r.ailments[i].Equal(a) {
			return false
		}
	}
	r.index[fp] = append(r.index[fp], len(r.ailments))
	r.ailments = append(r.ailments, a)
	return true
}

// AddAll inserts every ailment, skipping duplicates.
// It returns the number of ailments actually added.
func (r *Report) AddAll(ailments []Ailment) int {
	if len(ailments) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, a := range ailments {
		if r.addLocked(a) {
			added++
		}
	}
	return added
}

// Merge unions another report into this one.
func (r *Report) Merge(other *Report) {
	if other == nil || other == r {
		return
	}
	r.AddAll(other.Ailments())
}

// Len returns the number of distinct ailments.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ailments)
}

// Clean returns true if the examination found nothing wrong.
func (r *Report) Clean() bool {
	return r.Len() == 0
}

// Has reports whether an equal ailment is present.
func (r *Report) Has(a Ailment) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, i := range r.index[a.Fingerprint()] {
		if r.ailments[i].Equal(a) {
			return true
		}
	}
	return false
}

// Ailments returns a copy of all ailments.
func (r *Report) Ailments() []Ailment {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Ailment, len(r.ailments))
	copy(out, r.ailments)
	return out
}

// ForProperty returns the ailments attributed to property.
func (r *Report) ForProperty(property string) []Ailment {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Ailment
	for _, a := range r.ailments {
		if a.Property == property {
			out = append(out, a)
		}
	}
	return out
}

// Properties returns the distinct property names that have ailments,
// in first-seen order.
func (r *Report) Properties() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var props []string
	seen := make(map[string]bool, len(r.ailments))
	for _, a := range r.ailments {
		if !seen[a.Property] {
			props = append(props, a.Property)
			seen[a.Property] = true
		}
	}
	return props
}

// Sorted returns the ailments ordered by property, then rule.
func (r *Report) Sorted() []Ailment {
	out := r.Ailments()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Property != out[j].Property {
			return out[i].Property < out[j].Property
		}
		return out[i].Rule < out[j].Rule
	})
	return out
}

// Clone creates a copy of the report (not pooled).
func (r *Report) Clone() *Report {
	clone := NewReport()
	clone.ExaminationID = r.ExaminationID
	clone.AddAll(r.Ailments())
	return clone
}

// MarshalJSON renders the report as {"examinationId": ..., "ailments": [...]}.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ExaminationID string    `json:"examinationId,omitempty"`
		Clean         bool      `json:"clean"`
		Ailments      []Ailment `json:"ailments"`
	}{
		ExaminationID: r.ExaminationID,
		Clean:         r.Clean(),
		Ailments:      r.Sorted(),
	})
}
