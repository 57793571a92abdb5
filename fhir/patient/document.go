package patient

import (
	"encoding/json"
	"fmt"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/examiner/fhir/primitive"
	"github.com/gofhir/examiner/rule"
	"github.com/gofhir/examiner/rules"
)

// Genders are the codes of the administrative-gender value set.
var Genders = []string{"male", "female", "other", "unknown"}

// ResourceType is the FHIR resource type handled by this package.
const ResourceType = "Patient"

// Document is a Patient resource kept together with its source JSON, so
// rules can work on the typed model while FHIRPath invariants run on the
// original document.
type Document struct {
	Source       string
	Raw          json.RawMessage
	Patient      *r4.Patient
	Demographics Demographics
}

// Demographics are primitive Patient elements read straight from the JSON so
// their lexical form can be checked.
type Demographics struct {
	ID        *string `json:"id"`
	Gender    *string `json:"gender"`
	BirthDate *string `json:"birthDate"`
}

// Parse decodes a Patient resource.
func Parse(source string, data []byte) (*Document, error) {
	var header struct {
		ResourceType string `json:"resourceType"`
		Demographics
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%s: invalid JSON: %w", source, err)
	}
	if header.ResourceType != ResourceType {
		return nil, fmt.Errorf("%s: resourceType %q, want %q", source, header.ResourceType, ResourceType)
	}

	var p r4.Patient
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%s: decode Patient: %w", source, err)
	}
	return &Document{
		Source:       source,
		Raw:          json.RawMessage(data),
		Patient:      &p,
		Demographics: header.Demographics,
	}, nil
}

// Resource returns the typed patient.
func (d *Document) Resource() *r4.Patient {
	if d == nil {
		return nil
	}
	return d.Patient
}

// JSON returns the source document.
func (d *Document) JSON() json.RawMessage {
	if d == nil {
		return nil
	}
	return d.Raw
}

// ForDocuments lifts a rule set over patients to documents. Property names
// are unchanged.
func ForDocuments(set rule.RuleSet[*r4.Patient]) rule.RuleSet[*Document] {
	return rule.Nest("", (*Document).Resource, set)
}

// DocumentRules returns Rules lifted to documents plus the format checks on
// id, gender and birthDate.
func DocumentRules() rule.RuleSet[*Document] {
	return ForDocuments(Rules()).With(
		rule.ForE("id", demographic(func(d Demographics) *string { return d.ID }),
			rules.Optional(primitive.Format(primitive.TypeID))),
		rule.ForE("gender", demographic(func(d Demographics) *string { return d.Gender }),
			rules.Optional(rules.OneOf(Genders...))),
		rule.ForE("birthDate", demographic(func(d Demographics) *string { return d.BirthDate }),
			rules.Optional(primitive.Format(primitive.TypeDate))),
	)
}

func demographic(get func(Demographics) *string) rule.Accessor[*Document, *string] {
	return func(d *Document) (*string, error) {
		if d == nil {
			return nil, ErrNoPatient
		}
		return get(d.Demographics), nil
	}
}
