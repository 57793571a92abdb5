// Package examination runs trees of rule groups against a patient.
//
// A Definition holds root branches. A Batch is a branch that evaluates a
// rule.RuleSet and then, depending on its Gate, its child branches:
//
//	identity := examination.NewBatch("identity", identityRules).
//		WithGate(examination.GateOnPass).
//		WithChildren(examination.NewBatch("identity-details", detailRules))
//
//	def := examination.NewDefinition("patient", identity, contact)
//	report, err := def.Apply(ctx, patient)
//
// Ailments from every branch are merged into one report; equal ailments
// produced by different branches appear once.
package examination
