package rule_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/rule"
	"github.com/gofhir/examiner/rules"
)

type address struct {
	City string
	Zip  string
}

type customer struct {
	Home, Work address
}

func TestNest_QualifiesProperties(t *testing.T) {
	child := rule.NewRuleSet(
		rule.For("city", func(a address) string { return a.City }, rules.NotBlank()),
	)
	s := rule.Nest("home", func(c customer) address { return c.Home }, child)

	assert.Equal(t, []string{"home.city"}, s.Properties())

	got, err := s.Evaluate(nil, customer{})
	require.NoError(t, err)
	assert.Equal(t, []ex.Ailment{{Rule: rules.IDNotBlank, Property: "home.city"}}, got)
}

func TestNest_ScopesSharedComputation(t *testing.T) {
	var calls atomic.Int32
	zip := rule.NewReducer("zip", func(a address) (int, error) {
		calls.Add(1)
		return len(a.Zip), nil
	}).
		Check("zip", rules.Min(5)).
		Check("city", rules.Max(9))

	child := rule.OfShared[address](zip)
	s := rule.Flatten(
		rule.Nest("home", func(c customer) address { return c.Home }, child),
		rule.Nest("work", func(c customer) address { return c.Work }, child),
	)

	report, err := s.Examine(customer{
		Home: address{Zip: "123"},
		Work: address{Zip: "12345"},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []ex.Ailment{
		ex.NewAilment(rules.IDMin).On("home.zip").With("min", 5).Build(),
	}, report.Ailments())
}

func TestNest_PeekQualifiesShadows(t *testing.T) {
	child := rule.OfShared[address](rule.NewReducer("zip", func(a address) (string, error) {
		return a.Zip, nil
	}).Check("zip", rules.NotBlank()))

	s := rule.Nest("home", func(c customer) address { return c.Home }, child)
	assert.Equal(t, "home.zip", s.At(0).PeekAilment().Property)
}
