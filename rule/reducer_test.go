package rule_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/rule"
	"github.com/gofhir/examiner/rules"
)

type form struct {
	A, B int
}

func scoreReducer(calls *atomic.Int32) *rule.Reducer[form, int] {
	return rule.NewReducer("totalScore", func(f form) (int, error) {
		calls.Add(1)
		return f.A + f.B, nil
	}).
		Check("a", rules.NonNegative[int]()).
		Check("b", rules.NonNegative[int]())
}

func TestReducer_ComputesOncePerExamination(t *testing.T) {
	var calls atomic.Int32
	s := rule.OfShared[form](scoreReducer(&calls))
	require.Equal(t, 2, s.Len())

	report, err := s.Examine(form{A: -1, B: -1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 2, report.Len())
	assert.True(t, report.Has(ex.Ailment{Rule: rules.IDNonNegative, Property: "a"}))
	assert.True(t, report.Has(ex.Ailment{Rule: rules.IDNonNegative, Property: "b"}))
}

func TestReducer_FreshComputationPerExamination(t *testing.T) {
	var calls atomic.Int32
	s := rule.OfShared[form](scoreReducer(&calls))

	for i := 0; i < 3; i++ {
		_, err := s.Examine(form{A: 1, B: 2})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestReducer_TestAndApplyShareComputation(t *testing.T) {
	var calls atomic.Int32
	s := rule.OfShared[form](scoreReducer(&calls))
	rctx := rule.NewContext()

	for _, r := range s.All() {
		ok, err := r.Test(rctx, form{A: 2, B: 3})
		require.NoError(t, err)
		assert.True(t, ok)

		a, err := r.Apply(rctx, form{A: 2, B: 3})
		require.NoError(t, err)
		assert.Nil(t, a)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestReducer_ConcurrentExaminationsDoNotShareState(t *testing.T) {
	var calls atomic.Int32
	s := rule.OfShared[form](scoreReducer(&calls))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f := form{A: 1, B: 1}
			if i%2 == 0 {
				f = form{A: -3, B: -3}
			}
			report, err := s.Examine(f)
			if !assert.NoError(t, err) {
				return
			}
			if i%2 == 0 {
				assert.Equal(t, 2, report.Len())
			} else {
				assert.True(t, report.Clean())
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(n), calls.Load())
}

func TestReducer_ShadowIntrospection(t *testing.T) {
	r := rule.NewReducer("range", func(f form) (int, error) { return f.A, nil }).
		Check("low", rules.Min(0)).
		Check("high", rules.Max(10))

	assert.Equal(t, "range", r.Name())
	assert.Equal(t, []string{"low", "high"}, r.Properties())

	s := rule.OfShared[form](r)
	require.Equal(t, 2, s.Len())

	low, high := s.At(0), s.At(1)
	assert.Equal(t, "low", low.Property())
	assert.Equal(t, ex.Params{"min": 0}, low.Params())
	assert.Equal(t, ex.NewAilment(rules.IDMin).On("low").With("min", 0).Build(), low.PeekAilment())

	assert.Equal(t, "high", high.Property())
	assert.Equal(t, ex.Params{"max": 10}, high.Params())
	assert.Equal(t, rules.IDMax, high.PeekAilment().Rule)
}

func TestReducer_CheckReturnsNewReducer(t *testing.T) {
	base := rule.NewReducer("sum", func(f form) (int, error) { return f.A + f.B, nil })
	withA := base.Check("a", rules.Positive[int]())
	withAB := withA.Check("b", rules.Positive[int]())

	assert.Empty(t, base.Properties())
	assert.Equal(t, []string{"a"}, withA.Properties())
	assert.Equal(t, []string{"a", "b"}, withAB.Properties())
}

func TestReducer_ComputationFault(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("cannot total")
	r := rule.NewReducer("totalScore", func(form) (int, error) {
		calls.Add(1)
		return 0, boom
	}).
		Check("a", rules.NonNegative[int]()).
		Check("b", rules.NonNegative[int]())

	report, err := rule.OfShared[form](r).Examine(form{})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ex.ErrComputation)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), calls.Load())

	var fault *ex.FaultError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "totalScore", fault.Rule)
}

func TestOfShared_PresizedAcrossReducers(t *testing.T) {
	var c1, c2 atomic.Int32
	s := rule.OfShared[form](scoreReducer(&c1), scoreReducer(&c2))
	assert.Equal(t, 4, s.Len())

	_, err := s.Examine(form{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), c1.Load())
	assert.Equal(t, int32(1), c2.Load())
}

func TestAndShared(t *testing.T) {
	var calls atomic.Int32
	own := rule.NewRuleSet(rule.For("a", func(f form) int { return f.A }, rules.Max(100)))
	s := own.AndShared(scoreReducer(&calls))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a", "b"}, s.Properties())
}

func TestReducer_GatedShadowSkipsComputation(t *testing.T) {
	var calls atomic.Int32
	shadows := rule.OfShared[form](scoreReducer(&calls))

	var gated []rule.PropertyRule[form]
	for _, r := range shadows.All() {
		gated = append(gated, rule.When(func(f form) bool { return f.A != 0 }, r))
	}

	report, err := rule.NewRuleSet(gated...).Examine(form{A: 0, B: -9})
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Zero(t, calls.Load())
}
