package main

import (
	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/engine"
	"github.com/gofhir/examiner/examination"
	"github.com/gofhir/examiner/fhir/patient"
	"github.com/gofhir/examiner/fhirpath"
	"github.com/gofhir/examiner/rule"
)

// suite is everything needed to examine patient documents.
type suite struct {
	evaluator  *fhirpath.Evaluator
	examiner   *engine.Examiner[*patient.Document]
	definition *examination.Definition[*patient.Document]
}

func newSuite(opts *rootOptions) (*suite, error) {
	cfg := opts.cfg
	options := ex.DefaultOptions().Apply(cfg.Options()...)

	evaluator := fhirpath.NewEvaluator(options.ExpressionCacheSize)
	invariants, err := fhirpath.Invariants(evaluator, options.ObjectName, (*patient.Document).JSON, cfg.Invariants...)
	if err != nil {
		return nil, err
	}

	examiner := engine.New[*patient.Document](cfg.Options()...)
	examiner.SetLogger(opts.log)

	sets := []rule.RuleSet[*patient.Document]{patient.DocumentRules()}
	if invariants.Len() > 0 {
		sets = append(sets, invariants)
	}

	return &suite{
		evaluator:  evaluator,
		examiner:   examiner,
		definition: examination.FromRuleSets(patient.ResourceType, sets...),
	}, nil
}
