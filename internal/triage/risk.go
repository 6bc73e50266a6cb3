package triage

import (
	"context"

	"medimind/internal/prompt"
	"medimind/internal/schema"
)

// CategorizePatientRisk assigns a Low/Medium/High risk category with
// explainable reasoning. Every bundle field is mandatory; there is no
// empty-input shortcut for this flow.
func (s *Service) CategorizePatientRisk(ctx context.Context, in schema.PatientBundle) (schema.RiskAssessment, error) {
	const phase = "categorize_risk"

	if err := schema.ValidatePatientBundle(in); err != nil {
		return schema.RiskAssessment{}, err
	}

	p, err := prompt.CategorizeRisk(in)
	if err != nil {
		return schema.RiskAssessment{}, err
	}
	raw, err := s.generate(ctx, phase, p, in, s.opts.SimpleTimeout, true)
	if err != nil {
		s.degraded(phase, err)
		return schema.DegradedRisk(), nil
	}
	out, err := schema.ParseRiskAssessment(raw)
	if err != nil {
		s.degraded(phase, err)
		return schema.DegradedRisk(), nil
	}
	return out, nil
}
