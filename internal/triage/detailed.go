package triage

import (
	"context"
	"strings"

	"medimind/internal/prompt"
	"medimind/internal/schema"
)

// GenerateDetailedDiagnoses returns the full structured report. Empty
// input yields a zero-risk report with explanatory next steps rather than
// an error, because probing with no data is legitimate. Model or contract
// failures degrade to a report with empty conditions and the disclaimer
// intact.
func (s *Service) GenerateDetailedDiagnoses(ctx context.Context, in schema.DetailedDiagnosisInput) (schema.DiagnosisReport, error) {
	const phase = "detailed_diagnoses"

	if strings.TrimSpace(in.Symptoms) == "" &&
		strings.TrimSpace(in.Description) == "" &&
		strings.TrimSpace(in.ReportDataURI) == "" {
		return schema.EmptyReport(), nil
	}

	p, err := prompt.DetailedDiagnoses(in)
	if err != nil {
		return schema.DiagnosisReport{}, err
	}
	raw, err := s.generate(ctx, phase, p, in, s.opts.DetailedTimeout, false)
	if err != nil {
		s.degraded(phase, err)
		return schema.DegradedReport(), nil
	}
	report, err := schema.ParseDiagnosisReport(raw)
	if err != nil {
		s.degraded(phase, err)
		return schema.DegradedReport(), nil
	}
	// The disclaimer is mandatory wording; a model paraphrase is replaced,
	// not trusted.
	report.Disclaimer = schema.Disclaimer
	return report, nil
}
