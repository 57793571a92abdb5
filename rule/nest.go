package rule

import (
	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/pool"
)

// nestScope keys the child call scope of one Nest call.
type nestScope struct {
	name string
}

// Nest lifts a rule set over a child value into the parent type. Properties
// are qualified as "name.child". Shared computations in child run in a call
// scope private to this Nest call.
func Nest[P, C any](name string, get func(P) C, child RuleSet[C]) RuleSet[P] {
	return NestE(name, Getter(get), child)
}

// NestE is Nest with a fallible accessor.
func NestE[P, C any](name string, get Accessor[P, C], child RuleSet[C]) RuleSet[P] {
	if get == nil {
		panic(ex.ErrNilRule)
	}
	scope := &nestScope{name: name}
	out := make([]PropertyRule[P], 0, len(child.rules))
	for _, r := range child.rules {
		out = append(out, &nested[P, C]{name: name, get: get, inner: r, scope: scope})
	}
	return RuleSet[P]{rules: out}
}

type nested[P, C any] struct {
	name  string
	get   Accessor[P, C]
	inner PropertyRule[C]
	scope *nestScope
}

func (n *nested[P, C]) Property() string {
	return pool.JoinPath(n.name, n.inner.Property())
}

func (n *nested[P, C]) child(rctx *Context, patient P) (*Context, C, error) {
	c, err := n.get(patient)
	if err != nil {
		return nil, c, ex.NewFault(ex.ErrExtraction, n.name, n.inner.PeekAilment().Rule, err)
	}
	if rctx == nil {
		return nil, c, nil
	}
	return rctx.Scope(n.scope), c, nil
}

func (n *nested[P, C]) Test(rctx *Context, patient P) (bool, error) {
	crctx, c, err := n.child(rctx, patient)
	if err != nil {
		return false, err
	}
	return n.inner.Test(crctx, c)
}

func (n *nested[P, C]) Apply(rctx *Context, patient P) (*ex.Ailment, error) {
	crctx, c, err := n.child(rctx, patient)
	if err != nil {
		return nil, err
	}
	a, err := n.inner.Apply(crctx, c)
	if err != nil || a == nil {
		return nil, err
	}
	return attribute(a, pool.JoinPath(n.name, a.Property)), nil
}

func (n *nested[P, C]) PeekAilment() ex.Ailment {
	a := n.inner.PeekAilment()
	if a.Property != "" {
		a = a.WithProperty(pool.JoinPath(n.name, a.Property))
	}
	return a
}

func (n *nested[P, C]) Params() ex.Params {
	return n.inner.Params()
}
