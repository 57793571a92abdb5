// Package rules provides generic leaf rules for use with package rule.
//
// Every constructor returns a rule.Rule that is stateless and safe to share
// between rule sets and goroutines. Rule ids are stable constants so ailments
// can be matched by drivers and translated for display; bounds and other
// configuration travel in the ailment params.
//
// Rules are grouped by family:
//   - presence: NotNil, Required, NotBlank, NotEmpty
//   - numeric: Positive, NonNegative, Min, Max, Between
//   - string: MinLen, MaxLen, Matches, OneOf
//   - composite: Each, Predicate, Optional
//
// # Usage
//
//	set := rule.NewRuleSet(
//		rule.For("name", func(p Person) *string { return p.Name }, rules.NotNil[*string]()),
//		rule.For("age", func(p Person) int { return p.Age }, rules.Positive[int]()),
//	)
package rules

// Rule ids reported by this package.
const (
	IDNotNull     = "NOT_NULL"
	IDRequired    = "REQUIRED"
	IDNotBlank    = "NOT_BLANK"
	IDNotEmpty    = "NOT_EMPTY"
	IDPositive    = "POSITIVE"
	IDNonNegative = "NON_NEGATIVE"
	IDMin         = "MIN"
	IDMax         = "MAX"
	IDBetween     = "BETWEEN"
	IDMinLength   = "MIN_LENGTH"
	IDMaxLength   = "MAX_LENGTH"
	IDPattern     = "PATTERN"
	IDOneOf       = "ONE_OF"
	IDEach        = "EACH"
)

// Numeric is a constraint that permits any numeric type.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}
