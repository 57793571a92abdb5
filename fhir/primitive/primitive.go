// Package primitive provides leaf rules for the string formats of FHIR R4
// primitive types.
package primitive

import (
	"fmt"
	"regexp"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/rule"
)

// IDInvalidFormat is reported when a value does not match its primitive type.
const IDInvalidFormat = "INVALID_FORMAT"

// Primitive type names.
const (
	TypeID       = "id"
	TypeCode     = "code"
	TypeDate     = "date"
	TypeDateTime = "dateTime"
	TypeInstant  = "instant"
	TypeURI      = "uri"
	TypeOID      = "oid"
	TypeUUID     = "uuid"
)

// Value regexes from the R4 primitive type StructureDefinitions.
var patterns = map[string]string{
	TypeID:   `[A-Za-z0-9\-\.]{1,64}`,
	TypeCode: `[^\s]+(\s[^\s]+)*`,
	TypeDate: `([0-9]([0-9]([0-9][1-9]|[1-9]0)|[1-9]00)|[1-9]000)(-(0[1-9]|1[0-2])(-(0[1-9]|[1-2][0-9]|3[0-1]))?)?`,
	TypeDateTime: `([0-9]([0-9]([0-9][1-9]|[1-9]0)|[1-9]00)|[1-9]000)(-(0[1-9]|1[0-2])(-(0[1-9]|[1-2][0-9]|3[0-1])` +
		`(T([01][0-9]|2[0-3]):[0-5][0-9]:([0-5][0-9]|60)(\.[0-9]+)?(Z|(\+|-)((0[0-9]|1[0-3]):[0-5][0-9]|14:00)))?)?)?`,
	TypeInstant: `([0-9]([0-9]([0-9][1-9]|[1-9]0)|[1-9]00)|[1-9]000)-(0[1-9]|1[0-2])-(0[1-9]|[1-2][0-9]|3[0-1])` +
		`T([01][0-9]|2[0-3]):[0-5][0-9]:([0-5][0-9]|60)(\.[0-9]+)?(Z|(\+|-)((0[0-9]|1[0-3]):[0-5][0-9]|14:00))`,
	TypeURI:  `\S*`,
	TypeOID:  `urn:oid:[0-2](\.(0|[1-9][0-9]*))+`,
	TypeUUID: `urn:uuid:[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`,
}

// compiled holds the anchored form of every pattern.
var compiled = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(patterns))
	for name, p := range patterns {
		out[name] = regexp.MustCompile("^" + p + "$")
	}
	return out
}()

// Types returns the supported primitive type names.
func Types() []string {
	out := make([]string, 0, len(patterns))
	for name := range patterns {
		out = append(out, name)
	}
	return out
}

// Format returns a rule checking that a string is a valid lexical value of
// typeName. The ailment carries {"type": typeName}. It panics for unknown
// types.
func Format(typeName string) rule.Rule[string] {
	re, ok := compiled[typeName]
	if !ok {
		panic(fmt.Sprintf("primitive: unknown type %q", typeName))
	}
	return rule.New(IDInvalidFormat, ex.Params{"type": typeName}, re.MatchString)
}

// Valid reports whether value is a valid lexical value of typeName. Unknown
// types are never valid.
func Valid(typeName, value string) bool {
	re, ok := compiled[typeName]
	return ok && re.MatchString(value)
}
