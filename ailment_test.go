package examiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams(t *testing.T) {
	var nilParams Params
	assert.Nil(t, nilParams.Clone())
	assert.True(t, nilParams.Equal(Params{}))

	p := Params{"max": 10, "min": 1}
	clone := p.Clone()
	clone["min"] = 2
	assert.Equal(t, 1, p["min"])
	assert.Equal(t, []string{"max", "min"}, p.Keys())
	assert.False(t, p.Equal(clone))
	assert.True(t, p.Equal(Params{"min": 1, "max": 10}))
	assert.True(t, Params{"allowed": []string{"a"}}.Equal(Params{"allowed": []string{"a"}}))
}

func TestAilmentBuilder(t *testing.T) {
	b := NewAilment("MIN").On("age").With("min", 0)
	a := b.Build()
	b.With("min", 18)

	assert.Equal(t, Ailment{Rule: "MIN", Property: "age", Params: Params{"min": 0}}, a)
	assert.Equal(t, 18, b.Build().Params["min"])

	merged := NewAilment("BETWEEN").Params(Params{"min": 1, "max": 2}).Build()
	assert.Equal(t, Params{"min": 1, "max": 2}, merged.Params)
	assert.True(t, merged.WholeObject())
}

func TestAilment_WithProperty(t *testing.T) {
	a := NewAilment("MAX").With("max", 3).Build()
	b := a.WithProperty("name")

	b.Params["max"] = 4
	assert.Equal(t, "", a.Property)
	assert.Equal(t, 3, a.Params["max"])
	assert.Equal(t, "name", b.Property)
}

func TestAilment_EqualAndFingerprint(t *testing.T) {
	a := Ailment{Rule: "MIN", Property: "age", Params: Params{"min": 0}}
	same := Ailment{Rule: "MIN", Property: "age", Params: Params{"min": 0}}
	otherParam := Ailment{Rule: "MIN", Property: "age", Params: Params{"min": 1}}
	otherProperty := Ailment{Rule: "MIN", Property: "height", Params: Params{"min": 0}}

	assert.True(t, a.Equal(same))
	assert.Equal(t, a.Fingerprint(), same.Fingerprint())
	assert.False(t, a.Equal(otherParam))
	// Param values are not hashed, so these collide and Equal decides.
	assert.Equal(t, a.Fingerprint(), otherParam.Fingerprint())
	assert.False(t, a.Equal(otherProperty))
	assert.NotEqual(t, a.Fingerprint(), otherProperty.Fingerprint())
}

func TestAilment_String(t *testing.T) {
	tests := []struct {
		ailment Ailment
		want    string
	}{
		{Ailment{Rule: "NOT_NULL"}, "NOT_NULL"},
		{Ailment{Rule: "NOT_NULL", Property: "name"}, "NOT_NULL at name"},
		{Ailment{Rule: "BETWEEN", Property: "age", Params: Params{"min": 0, "max": 120}}, "BETWEEN at age {max: 120, min: 0}"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ailment.String())
		})
	}
}
