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
)

func TestContext_MemoRunsOnce(t *testing.T) {
	rctx := rule.AcquireContext()
	defer rctx.Release()

	var calls atomic.Int32
	key := new(int)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := rctx.Memo(key, func() (any, error) {
				calls.Add(1)
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestContext_MemoCachesErrors(t *testing.T) {
	rctx := rule.NewContext()
	boom := errors.New("boom")
	calls := 0
	fn := func() (any, error) {
		calls++
		return nil, boom
	}

	_, err := rctx.Memo("k", fn)
	assert.ErrorIs(t, err, boom)
	_, err = rctx.Memo("k", fn)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestContext_RecordsMemoMetrics(t *testing.T) {
	m := ex.NewMetrics()
	rctx := rule.NewContext()
	rctx.Metrics = m

	for i := 0; i < 3; i++ {
		_, err := rctx.Memo("k", func() (any, error) { return 1, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(1), m.MemoMisses())
	assert.Equal(t, uint64(2), m.MemoHits())
}

func TestContext_ReleaseClearsMemo(t *testing.T) {
	rctx := rule.AcquireContext()
	id := rctx.ID
	assert.NotEmpty(t, id)

	_, err := rctx.Memo("k", func() (any, error) { return 1, nil })
	require.NoError(t, err)
	rctx.Release()

	next := rule.AcquireContext()
	defer next.Release()
	assert.NotEqual(t, id, next.ID)

	calls := 0
	_, err = next.Memo("k", func() (any, error) {
		calls++
		return 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestContext_Scope(t *testing.T) {
	rctx := rule.NewContext()
	key := new(int)

	child := rctx.Scope(key)
	assert.Same(t, child, rctx.Scope(key))
	assert.NotSame(t, child, rctx.Scope(new(int)))
	assert.Equal(t, rctx.ID, child.ID)

	_, err := child.Memo("k", func() (any, error) { return "child", nil })
	require.NoError(t, err)
	v, err := rctx.Memo("k", func() (any, error) { return "parent", nil })
	require.NoError(t, err)
	assert.Equal(t, "parent", v)
}

func TestContext_ZeroValueUsable(t *testing.T) {
	var rctx rule.Context
	v, err := rctx.Memo("k", func() (any, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestContext_NilRelease(t *testing.T) {
	var rctx *rule.Context
	assert.NotPanics(t, func() { rctx.Release() })
}
