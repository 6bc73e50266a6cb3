package prompt

import "medimind/internal/schema"

// Preset holds reusable constraint/rule/safety blocks shared across flow
// templates.
type Preset struct {
	Constraints []string
	Rules       []string
	Safety      []string
}

// Apply prepends preset blocks to a spec. Presets come first so flow
// templates cannot shadow them.
func Apply(spec Spec, presets ...Preset) Spec {
	var merged Preset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
		merged.Safety = append(merged.Safety, p.Safety...)
	}
	spec.Constraints = append(merged.Constraints, spec.Constraints...)
	spec.Rules = append(merged.Rules, spec.Rules...)
	spec.Safety = append(merged.Safety, spec.Safety...)
	return spec
}

// StrictJSON enforces schema-exact JSON-only output.
func StrictJSON() Preset {
	return Preset{
		Constraints: []string{
			"Return strict JSON only.",
			"Match the output fields exactly; no extra fields.",
			"No markdown, comments, or trailing commas.",
		},
	}
}

// Safety is the fixed safety-critical instruction block. Flow templates
// must never alter or drop it: the disclaimer requirement, the red-flag
// criteria, and the refusal policy for nonsensical input travel with every
// diagnostic prompt.
func Safety() Preset {
	return Preset{
		Safety: []string{
			"Include the mandatory disclaimer verbatim in any disclaimer field: \"" + schema.Disclaimer + "\"",
			"Severe or critical findings (e.g. Hemoglobin < 7 g/dL, oxygen saturation < 90%, systolic blood pressure > 180 mmHg) MUST produce red flags and an elevated risk score.",
			"If the input is unreadable, empty, or nonsensical, return a valid output object whose fields politely decline to diagnose; never invent findings.",
			"Never claim to replace professional medical care.",
		},
	}
}
