// Package fhirpath turns FHIRPath invariants into leaf rules.
package fhirpath

import (
	"encoding/json"
	"errors"
	"fmt"

	fp "github.com/gofhir/fhirpath"

	"github.com/gofhir/examiner/cache"
)

// Evaluator compiles FHIRPath expressions once and evaluates them against
// FHIR resources. It is safe for concurrent use.
type Evaluator struct {
	compiled *cache.Cache[string, *fp.Expression]
}

// NewEvaluator creates an Evaluator keeping up to cacheSize compiled
// expressions.
func NewEvaluator(cacheSize int) *Evaluator {
	return &Evaluator{
		compiled: cache.New[string, *fp.Expression](cacheSize),
	}
}

// Compile returns the compiled form of expr, compiling it on first use.
func (e *Evaluator) Compile(expr string) (*fp.Expression, error) {
	compiled, err := e.compiled.GetOrLoad(expr, func() (*fp.Expression, error) {
		return fp.Compile(expr)
	})
	if err != nil {
		return nil, fmt.Errorf("compile FHIRPath expression %q: %w", expr, err)
	}
	return compiled, nil
}

// Evaluate evaluates expr against resource and reports whether it holds.
//
// resource may be JSON bytes, a JSON string, or any value that marshals to
// a FHIR resource. An empty result holds, following invariant semantics.
func (e *Evaluator) Evaluate(expr string, resource any) (bool, error) {
	compiled, err := e.Compile(expr)
	if err != nil {
		return false, err
	}
	return evaluate(compiled, expr, resource)
}

// Stats returns statistics of the compiled-expression cache.
func (e *Evaluator) Stats() cache.Stats {
	return e.compiled.Stats()
}

// Expressions returns the cached expressions, most recently used first.
func (e *Evaluator) Expressions() []string {
	return e.compiled.Keys()
}

func evaluate(compiled *fp.Expression, expr string, resource any) (bool, error) {
	data, err := toJSON(resource)
	if err != nil {
		return false, fmt.Errorf("convert resource to JSON: %w", err)
	}

	result, err := compiled.Evaluate(data)
	if err != nil {
		return false, fmt.Errorf("evaluate FHIRPath expression %q: %w", expr, err)
	}
	return holds(result), nil
}

// holds applies invariant truthiness: empty passes, a boolean is its value,
// anything else that cannot be read as a boolean passes.
func holds(result fp.Collection) bool {
	if result.Empty() {
		return true
	}
	b, err := result.ToBoolean()
	if err != nil {
		return true
	}
	return b
}

// errInvalidJSON is returned for byte or string resources that do not
// parse. The FHIRPath engine would otherwise evaluate them as empty.
var errInvalidJSON = errors.New("resource is not valid JSON")

func toJSON(resource any) ([]byte, error) {
	var data []byte
	switch v := resource.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	case string:
		data = []byte(v)
	default:
		return json.Marshal(v)
	}
	if !json.Valid(data) {
		return nil, errInvalidJSON
	}
	return data, nil
}
