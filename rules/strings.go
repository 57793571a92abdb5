package rules

import (
	"regexp"
	"slices"
	"unicode/utf8"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/rule"
)

// MinLen fails when the string has fewer than minimum characters.
func MinLen(minimum int) rule.Rule[string] {
	return rule.New(IDMinLength, ex.Params{"min": minimum}, func(v string) bool {
		return utf8.RuneCountInString(v) >= minimum
	})
}

// MaxLen fails when the string has more than maximum characters.
func MaxLen(maximum int) rule.Rule[string] {
	return rule.New(IDMaxLength, ex.Params{"max": maximum}, func(v string) bool {
		return utf8.RuneCountInString(v) <= maximum
	})
}

// Matches fails when the string does not match pattern.
// It panics if pattern does not compile, like regexp.MustCompile.
func Matches(pattern string) rule.Rule[string] {
	re := regexp.MustCompile(pattern)
	return rule.New(IDPattern, ex.Params{"pattern": pattern}, re.MatchString)
}

// OneOf fails when the value is not one of allowed.
func OneOf[V comparable](allowed ...V) rule.Rule[V] {
	set := slices.Clone(allowed)
	return rule.New(IDOneOf, ex.Params{"allowed": slices.Clone(allowed)}, func(v V) bool {
		return slices.Contains(set, v)
	})
}
