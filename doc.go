// Package examiner provides a composable validation engine.
//
// A value under examination is called the patient. Rules are run against the
// patient, or against named properties of it, and every failure is collected
// as an Ailment instead of stopping at the first one. The result of an
// examination is a Report: a deduplicated set of ailments.
//
// # Quick Start
//
//	import (
//	    ex "github.com/gofhir/examiner"
//	    "github.com/gofhir/examiner/engine"
//	    "github.com/gofhir/examiner/rule"
//	    "github.com/gofhir/examiner/rules"
//	)
//
//	set := rule.NewRuleSet(
//	    rule.For("name", func(p Person) *string { return p.Name }, rules.NotNil[*string]()),
//	    rule.For("age", func(p Person) int { return p.Age }, rules.Positive[int]()),
//	)
//
//	report, err := engine.New[Person]().Examine(ctx, patient, set)
//	if err != nil {
//	    // an accessor or computation failed: the report would be incomplete
//	}
//	for _, a := range report.Ailments() {
//	    fmt.Println(a)
//	}
//
// # Building Blocks
//
//   - rule.Rule: leaf check over any value (supplied by callers or package rules)
//   - rule.PropertyRule: a check attributed to a named property of the patient
//   - rule.When: conditional gating on a patient-level predicate
//   - rule.Reducer: one expensive derivation shared by several property checks
//   - rule.RuleSet: ordered, mergeable collection of property rules
//   - examination.Definition: tree of batches evaluated into one Report
//
// # Errors
//
// Validation failures are data and end up in the Report. Evaluation faults
// (an accessor failing, a shared computation failing) are returned as a
// *FaultError and abort the whole examination: a partial report is never
// returned.
package examiner
