package examiner

import (
	"errors"
	"fmt"
)

// Evaluation faults. These are programming or data-shape errors, not
// validation failures: they abort the examination instead of becoming
// ailments.
var (
	// ErrExtraction is returned when a property accessor fails.
	ErrExtraction = errors.New("property extraction failed")

	// ErrComputation is returned when a shared computation fails.
	ErrComputation = errors.New("shared computation failed")

	// ErrRuleFault is returned when a leaf rule cannot evaluate a value.
	ErrRuleFault = errors.New("rule evaluation failed")

	// ErrNilRule is returned when a composition is handed a nil rule.
	ErrNilRule = errors.New("nil rule")

	// ErrCancelled is returned when the caller's context ends mid-examination.
	ErrCancelled = errors.New("examination cancelled")
)

// FaultError attributes an evaluation fault to the rule and property that
// raised it.
type FaultError struct {
	// Kind is one of the sentinel errors above.
	Kind error

	// Property is the property being evaluated, if any.
	Property string

	// Rule is the id of the rule being evaluated, if known.
	Rule string

	// Err is the underlying cause.
	Err error
}

// NewFault creates a FaultError.
func NewFault(kind error, property, rule string, err error) *FaultError {
	return &FaultError{Kind: kind, Property: property, Rule: rule, Err: err}
}

func (e *FaultError) Error() string {
	msg := e.Kind.Error()
	if e.Property != "" {
		msg += fmt.Sprintf(" for property %q", e.Property)
	}
	if e.Rule != "" {
		msg += fmt.Sprintf(" (rule %s)", e.Rule)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *FaultError) Unwrap() error {
	return e.Err
}

// Is matches the fault against its kind sentinel.
func (e *FaultError) Is(target error) bool {
	return target == e.Kind
}

// IsFault reports whether err is an evaluation fault raised during an examination.
func IsFault(err error) bool {
	var fe *FaultError
	return errors.As(err, &fe)
}
