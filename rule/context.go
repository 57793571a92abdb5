package rule

import (
	"sync"

	"github.com/google/uuid"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/pool"
)

// Context is the call scope of one examination of one patient.
//
// It carries the memo that lets every shadow of a shared computation reuse
// a single derivation. A Context must not outlive its examination nor be
// reused for a different patient: rules stay stateless and shareable
// because all per-call state lives here.
//
// Context instances are pooled. Use AcquireContext() and Release().
type Context struct {
	// ID identifies the examination in logs and reports.
	ID string

	// Metrics, when set, receives memo hits and misses.
	Metrics *ex.Metrics

	mu   sync.Mutex
	memo map[any]*memoEntry
}

// memoEntry holds one memoized value. once makes concurrent callers for the
// same key wait for a single computation.
type memoEntry struct {
	once sync.Once
	val  any
	err  error
}

// scopeKey keys child scopes in the memo so they cannot collide with
// shared-computation delegates.
type scopeKey struct {
	key any
}

var memoPool = pool.NewMapPool[any, *memoEntry](8)

var contextPool = sync.Pool{
	New: func() any {
		return &Context{}
	},
}

// AcquireContext gets a Context from the pool with a fresh examination ID.
// Call Release() when the examination is over.
func AcquireContext() *Context {
	c := contextPool.Get().(*Context)
	c.ID = uuid.NewString()
	c.memo = memoPool.Acquire()
	return c
}

// NewContext creates a new (non-pooled) Context.
func NewContext() *Context {
	return &Context{
		ID:   uuid.NewString(),
		memo: make(map[any]*memoEntry, 8),
	}
}

// Release drops all memoized state and returns the Context to the pool.
// After calling Release, the Context should not be used.
func (c *Context) Release() {
	if c == nil {
		return
	}
	c.mu.Lock()
	memoPool.Release(c.memo)
	c.memo = nil
	c.mu.Unlock()

	c.ID = ""
	c.Metrics = nil
	contextPool.Put(c)
}

func (c *Context) entry(key any) *memoEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.memo == nil {
		c.memo = make(map[any]*memoEntry, 8)
	}
	e, ok := c.memo[key]
	if !ok {
		e = &memoEntry{}
		c.memo[key] = e
	}
	return e
}

// Memo returns the value memoized under key, running compute the first time
// key is seen in this Context. compute runs at most once per key, even under
// concurrent callers; its error is memoized too. key must be comparable.
func (c *Context) Memo(key any, compute func() (any, error)) (any, error) {
	e := c.entry(key)

	ran := false
	e.once.Do(func() {
		ran = true
		e.val, e.err = compute()
	})

	if c.Metrics != nil {
		if ran {
			c.Metrics.RecordMemoMiss()
		} else {
			c.Metrics.RecordMemoHit()
		}
	}
	return e.val, e.err
}

// Scope returns the child scope registered under key, creating it on first
// use. Child scopes isolate memoized state of nested rule sets evaluated
// against a different value than the patient itself.
func (c *Context) Scope(key any) *Context {
	e := c.entry(scopeKey{key})
	e.once.Do(func() {
		e.val = &Context{
			ID:      c.ID,
			Metrics: c.Metrics,
			memo:    make(map[any]*memoEntry, 4),
		}
	})
	return e.val.(*Context)
}
