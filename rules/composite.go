package rules

import (
	"fmt"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/rule"
)

// Each fails when any element of the slice fails r. The ailment carries the
// element rule's id under "rule" and the first failing index under "index".
func Each[E any](r rule.Rule[E]) rule.Rule[[]E] {
	if r == nil {
		panic(ex.ErrNilRule)
	}
	return &each[E]{rule: r}
}

type each[E any] struct {
	rule rule.Rule[E]
}

func (e *each[E]) Test(v []E) bool {
	i, err := e.firstFailure(v)
	return err == nil && i < 0
}

func (e *each[E]) Apply(v []E) *ex.Ailment {
	i, err := e.firstFailure(v)
	if err != nil {
		peek := e.PeekAilment()
		return &peek
	}
	return e.ailment(i)
}

// Check forwards evaluation errors of an element rule that is a
// rule.Checker, naming the offending index.
func (e *each[E]) Check(v []E) (*ex.Ailment, error) {
	i, err := e.firstFailure(v)
	if err != nil {
		return nil, fmt.Errorf("element %d: %w", i, err)
	}
	return e.ailment(i), nil
}

func (e *each[E]) ailment(i int) *ex.Ailment {
	if i < 0 {
		return nil
	}
	a := ex.NewAilment(IDEach).Params(e.Params()).With("index", i).Build()
	return &a
}

func (e *each[E]) PeekAilment() ex.Ailment {
	return ex.NewAilment(IDEach).Params(e.Params()).Build()
}

func (e *each[E]) Params() ex.Params {
	params := e.rule.Params().Clone()
	if params == nil {
		params = ex.Params{}
	}
	params["rule"] = e.rule.PeekAilment().Rule
	return params
}

// firstFailure returns the index of the first failing element, or -1.
// An element rule error stops the scan at that index.
func (e *each[E]) firstFailure(v []E) (int, error) {
	c, checks := e.rule.(rule.Checker[E])
	for i, el := range v {
		if !checks {
			if !e.rule.Test(el) {
				return i, nil
			}
			continue
		}
		a, err := c.Check(el)
		if err != nil {
			return i, err
		}
		if a != nil {
			return i, nil
		}
	}
	return -1, nil
}

// Predicate wraps an arbitrary check under a caller-chosen id.
func Predicate[V any](id string, params ex.Params, pass func(V) bool) rule.Rule[V] {
	return rule.New(id, params, pass)
}

// Optional lifts r to pointers: a nil value passes, any other value is
// checked by r.
func Optional[V any](r rule.Rule[V]) rule.Rule[*V] {
	if r == nil {
		panic(ex.ErrNilRule)
	}
	return &optional[V]{rule: r}
}

type optional[V any] struct {
	rule rule.Rule[V]
}

func (o *optional[V]) Test(v *V) bool {
	return v == nil || o.rule.Test(*v)
}

func (o *optional[V]) Apply(v *V) *ex.Ailment {
	if v == nil {
		return nil
	}
	return o.rule.Apply(*v)
}

// Check forwards to the inner rule's Check when it is a rule.Checker.
func (o *optional[V]) Check(v *V) (*ex.Ailment, error) {
	if v == nil {
		return nil, nil
	}
	if c, ok := o.rule.(rule.Checker[V]); ok {
		return c.Check(*v)
	}
	return o.rule.Apply(*v), nil
}

func (o *optional[V]) PeekAilment() ex.Ailment {
	return o.rule.PeekAilment()
}

func (o *optional[V]) Params() ex.Params {
	return o.rule.Params()
}
