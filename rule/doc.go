// Package rule composes leaf checks into rule sets over a patient type.
//
// A Rule checks one value. A PropertyRule binds a Rule to a named property
// of a patient through an accessor, so failures are attributed. When and
// Unless gate a PropertyRule on the whole patient. A Reducer derives one
// value from the patient and checks it on behalf of several properties; the
// derivation runs once per examination no matter how many of its properties
// are evaluated.
//
// RuleSet is the unit callers build and hand to an examiner:
//
//	set := rule.NewRuleSet(
//		rule.For("name", func(p Person) *string { return p.Name }, rules.NotNil[*string]()),
//	).
//		And(rule.Whole("person", adult)).
//		AndShared(score)
//
// Every evaluation runs inside a Context, the call scope of one examination.
// Rules never hold per-examination state, so the same RuleSet can be
// examined from many goroutines at once.
package rule
