package triage

import (
	"context"

	"go.uber.org/zap"

	"medimind/internal/prompt"
	"medimind/internal/schema"
)

// GenerateRankedDiagnoses returns diagnoses ordered by confidence
// descending. The ordering is a prompt contract: a violation is logged
// and the payload passed through unchanged, because re-sorting would be a
// local clinical heuristic this layer deliberately avoids.
func (s *Service) GenerateRankedDiagnoses(ctx context.Context, in schema.PatientBundle) ([]schema.RankedDiagnosis, error) {
	const phase = "ranked_diagnoses"

	if err := schema.ValidatePatientBundle(in); err != nil {
		return nil, err
	}

	p, err := prompt.RankedDiagnoses(in)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, phase, p, in, s.opts.SimpleTimeout, true)
	if err != nil {
		s.degraded(phase, err)
		return []schema.RankedDiagnosis{}, nil
	}
	out, err := schema.ParseRankedDiagnoses(raw)
	if err != nil {
		s.degraded(phase, err)
		return []schema.RankedDiagnosis{}, nil
	}
	for i := 1; i < len(out); i++ {
		if out[i].Confidence > out[i-1].Confidence {
			s.log.Warn("ranked order violated by model",
				zap.Int("position", i),
				zap.Float64("confidence", out[i].Confidence),
				zap.Float64("previous", out[i-1].Confidence),
			)
			break
		}
	}
	return out, nil
}
