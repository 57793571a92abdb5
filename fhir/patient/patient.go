// Package patient provides a ready-made rule set for FHIR R4 Patient
// resources.
package patient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofhir/fhir/r4"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/fhir/primitive"
	"github.com/gofhir/examiner/rule"
	"github.com/gofhir/examiner/rules"
)

// Rule ids reported by this package, in addition to those of package rules.
const (
	IDIdentifierSystem = "IDENTIFIER_SYSTEM"
	IDIdentifierValue  = "IDENTIFIER_VALUE"
	IDIdentifierUnique = "IDENTIFIER_UNIQUE"
	IDNameIncomplete   = "NAME_INCOMPLETE"
)

// ErrNoPatient is returned when a nil patient is examined.
var ErrNoPatient = errors.New("no patient")

// identity is derived from all identifiers in a single pass.
type identity struct {
	count         int
	missingSystem int
	missingValue  int
	duplicates    []string
}

func deriveIdentity(p *r4.Patient) (identity, error) {
	if p == nil {
		return identity{}, ErrNoPatient
	}

	id := identity{count: len(p.Identifier)}
	seen := make(map[string]struct{}, len(p.Identifier))
	for _, ident := range p.Identifier {
		system, value := deref(ident.System), deref(ident.Value)
		if system == "" {
			id.missingSystem++
		}
		if value == "" {
			id.missingValue++
		}
		if system == "" || value == "" {
			continue
		}
		key := system + "|" + value
		if _, dup := seen[key]; dup {
			id.duplicates = append(id.duplicates, key)
			continue
		}
		seen[key] = struct{}{}
	}
	return id, nil
}

// Identity is the shared computation over the patient's identifiers. It
// checks identifier.system, identifier.value and identifier uniqueness from
// one pass.
func Identity() *rule.Reducer[*r4.Patient, identity] {
	return rule.NewReducer("identity", deriveIdentity).
		Check("identifier.system", rule.New(IDIdentifierSystem, nil, func(id identity) bool {
			return id.missingSystem == 0
		})).
		Check("identifier.value", rule.New(IDIdentifierValue, nil, func(id identity) bool {
			return id.missingValue == 0
		})).
		Check("identifier", rule.New(IDIdentifierUnique, nil, func(id identity) bool {
			return len(id.duplicates) == 0
		}))
}

// Rules returns the rule set for a Patient:
//   - at least one identifier
//   - every name has a family name or a given name
//   - active is stated whenever the patient is identified
//   - identifiers carry a system and a value and are unique
func Rules() rule.RuleSet[*r4.Patient] {
	return rule.NewRuleSet(
		rule.ForE("identifier", identifiers, rules.NotEmpty[r4.Identifier]()),
		rule.ForE("name", names, rules.Each(completeName())),
		rule.When(identified, rule.ForE("active", active, rules.NotNil[*bool]())),
	).AndShared(Identity())
}

func completeName() rule.Rule[r4.HumanName] {
	return rule.New(IDNameIncomplete, nil, func(n r4.HumanName) bool {
		if strings.TrimSpace(deref(n.Family)) != "" {
			return true
		}
		for _, g := range n.Given {
			if strings.TrimSpace(g) != "" {
				return true
			}
		}
		return false
	})
}

func identified(p *r4.Patient) bool {
	return p != nil && len(p.Identifier) > 0
}

func identifiers(p *r4.Patient) ([]r4.Identifier, error) {
	if p == nil {
		return nil, ErrNoPatient
	}
	return p.Identifier, nil
}

func names(p *r4.Patient) ([]r4.HumanName, error) {
	if p == nil {
		return nil, ErrNoPatient
	}
	return p.Name, nil
}

func active(p *r4.Patient) (*bool, error) {
	if p == nil {
		return nil, ErrNoPatient
	}
	return p.Active, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Describe renders an ailment reported by Rules for display.
func Describe(a ex.Ailment) string {
	switch a.Rule {
	case rules.IDNotEmpty:
		return fmt.Sprintf("%s: at least one value is required", a.Property)
	case rules.IDNotNull:
		return fmt.Sprintf("%s: must be stated", a.Property)
	case rules.IDEach:
		return fmt.Sprintf("%s[%v]: fails %v", a.Property, a.Params["index"], a.Params["rule"])
	case IDIdentifierSystem:
		return "identifier: every identifier needs a system"
	case IDIdentifierValue:
		return "identifier: every identifier needs a value"
	case IDIdentifierUnique:
		return "identifier: system and value pairs must be unique"
	case rules.IDOneOf:
		return fmt.Sprintf("%s: must be one of %v", a.Property, a.Params["allowed"])
	case primitive.IDInvalidFormat:
		return fmt.Sprintf("%s: not a valid FHIR %v", a.Property, a.Params["type"])
	default:
		return a.String()
	}
}
