package examiner

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Params maps parameter names to the values a rule was configured with,
// e.g. the expected lower bound of a numeric check.
type Params map[string]any

// Clone returns an independent copy of the params.
// The copy is shallow: values themselves are shared.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both params hold the same keys with deeply equal values.
// A nil and an empty Params are equal.
func (p Params) Equal(other Params) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		ov, ok := other[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// Ailment describes one failed check against a patient.
//
// Ailments are values: treat them as immutable once built. Two ailments are
// equal iff rule, property and params are all equal, which is what makes a
// Report a set.
type Ailment struct {
	// Rule identifies the check that failed (e.g. "NOT_NULL").
	Rule string `json:"rule"`

	// Property is the name of the property the failure is attributed to.
	// Empty means the failure concerns the whole object.
	Property string `json:"property,omitempty"`

	// Params holds the rule parameters, e.g. {"min": 0}.
	Params Params `json:"params,omitempty"`
}

// WholeObject reports whether the ailment is not attributed to a property.
func (a Ailment) WholeObject() bool {
	return a.Property == ""
}

// WithProperty returns a copy of the ailment attributed to property.
func (a Ailment) WithProperty(property string) Ailment {
	return Ailment{
		Rule:     a.Rule,
		Property: property,
		Params:   a.Params.Clone(),
	}
}

// Equal reports structural equality.
func (a Ailment) Equal(other Ailment) bool {
	return a.Rule == other.Rule &&
		a.Property == other.Property &&
		a.Params.Equal(other.Params)
}

// Fingerprint hashes the parts of the ailment that are cheap to hash stably:
// rule, property and the sorted parameter names. Equal ailments always share
// a fingerprint; distinct ailments may collide and must be compared with Equal.
func (a Ailment) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(a.Rule)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(a.Property)
	for _, k := range a.Params.Keys() {
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(k)
	}
	return d.Sum64()
}

// String returns a human-readable representation of the ailment.
func (a Ailment) String() string {
	var b strings.Builder
	b.WriteString(a.Rule)
	if a.Property != "" {
		b.WriteString(" at ")
		b.WriteString(a.Property)
	}
	if len(a.Params) > 0 {
		b.WriteString(" {")
		for i, k := range a.Params.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %v", k, a.Params[k])
		}
		b.WriteString("}")
	}
	return b.String()
}

// AilmentBuilder provides a fluent API for building ailments.
type AilmentBuilder struct {
	ailment Ailment
}

// NewAilment creates a new AilmentBuilder for the given rule id.
func NewAilment(rule string) *AilmentBuilder {
	return &AilmentBuilder{
		ailment: Ailment{Rule: rule},
	}
}

// On attributes the ailment to a property.
func (b *AilmentBuilder) On(property string) *AilmentBuilder {
	b.ailment.Property = property
	return b
}

// With sets a single parameter.
func (b *AilmentBuilder) With(key string, value any) *AilmentBuilder {
	if b.ailment.Params == nil {
		b.ailment.Params = make(Params, 2)
	}
	b.ailment.Params[key] = value
	return b
}

// Params merges all given parameters.
func (b *AilmentBuilder) Params(params Params) *AilmentBuilder {
	for k, v := range params {
		b.With(k, v)
	}
	return b
}

// Build returns the constructed ailment. The builder may be reused; the
// returned ailment does not share its params map with it.
func (b *AilmentBuilder) Build() Ailment {
	return Ailment{
		Rule:     b.ailment.Rule,
		Property: b.ailment.Property,
		Params:   b.ailment.Params.Clone(),
	}
}
