package triage

import (
	"context"
	"strings"

	"medimind/internal/prompt"
	"medimind/internal/schema"
)

// DetectUrgentConditions flags urgent, life-threatening conditions and
// emits escalation alerts. After normalization the detected flag always
// agrees with the alert list; when the model's two fields disagree, the
// alerts are authoritative.
func (s *Service) DetectUrgentConditions(ctx context.Context, in schema.UrgentInput) (schema.UrgentFindings, error) {
	const phase = "urgent_conditions"

	if strings.TrimSpace(in.PatientData) == "" {
		return schema.UrgentFindings{UrgentConditionsDetected: false, EscalationAlerts: []schema.EscalationAlert{}}, nil
	}

	p, err := prompt.DetectUrgent(in)
	if err != nil {
		return schema.UrgentFindings{}, err
	}
	raw, err := s.generate(ctx, phase, p, in, s.opts.SimpleTimeout, true)
	if err != nil {
		s.degraded(phase, err)
		return schema.DegradedUrgent(), nil
	}
	out, err := schema.ParseUrgentFindings(raw)
	if err != nil {
		s.degraded(phase, err)
		return schema.DegradedUrgent(), nil
	}
	out.UrgentConditionsDetected = len(out.EscalationAlerts) > 0
	return out, nil
}
