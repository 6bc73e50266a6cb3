package triage

import (
	"context"
	"strings"
	"time"

	"medimind/internal/prompt"
	"medimind/internal/schema"
)

// GenerateSimpleDiagnoses returns an unranked list of likely diagnoses
// with justifications. Empty input short-circuits to an empty list; any
// model or contract failure degrades to an empty list as well.
func (s *Service) GenerateSimpleDiagnoses(ctx context.Context, in schema.SimpleDiagnosisInput) ([]schema.SimpleDiagnosis, error) {
	const phase = "simple_diagnoses"

	if strings.TrimSpace(in.Symptoms) == "" && strings.TrimSpace(in.ReportDataURI) == "" {
		return []schema.SimpleDiagnosis{}, nil
	}

	p, err := prompt.SimpleDiagnoses(in)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, phase, p, in, s.timeoutFor(in.ReportDataURI), true)
	if err != nil {
		s.degraded(phase, err)
		return []schema.SimpleDiagnosis{}, nil
	}
	out, err := schema.ParseSimpleDiagnoses(raw)
	if err != nil {
		s.degraded(phase, err)
		return []schema.SimpleDiagnosis{}, nil
	}
	return out, nil
}

// timeoutFor picks the long timeout when a report is attached, since the
// model performs OCR-style extraction on it.
func (s *Service) timeoutFor(reportDataURI string) time.Duration {
	if strings.TrimSpace(reportDataURI) != "" {
		return s.opts.DetailedTimeout
	}
	return s.opts.SimpleTimeout
}
