package schema

// Degraded responses are schema-valid results returned instead of an
// internal failure. They keep the one-shape-per-flow contract: empty or
// neutral fields, a human-readable explanation in the flow's text field,
// and the disclaimer always populated. Raw error detail never appears here.

// EmptyReport is the sentinel for a detailed-diagnosis request with no
// meaningful input. Probing with no data is legitimate, so this is a
// zero-risk report, not an error.
func EmptyReport() DiagnosisReport {
	r := DiagnosisReport{
		DataQuality: DataQuality{
			Score:       0,
			Suggestions: []string{"Provide symptoms, a description, or a medical report to analyze."},
		},
		RiskScore:     0,
		NextSteps:     "No data was provided. Enter your symptoms or upload a medical report to receive an analysis.",
		SummaryReport: "No analysis was performed because no symptoms, description, or report were supplied.",
		Disclaimer:    Disclaimer,
	}
	r.normalize()
	return r
}

// DegradedReport is the detailed flow's answer when the model is
// unavailable or its output failed validation.
func DegradedReport() DiagnosisReport {
	r := DiagnosisReport{
		DataQuality:   DataQuality{Score: 0, Suggestions: []string{}},
		RiskScore:     0,
		NextSteps:     "The analysis service is temporarily unavailable. Please try again shortly. If your symptoms are severe or worsening, seek professional medical care now.",
		SummaryReport: "The analysis could not be completed at this time.",
		Disclaimer:    Disclaimer,
	}
	r.normalize()
	return r
}

// DegradedRisk is the risk flow's answer when no assessment could be made.
// The category enum has no neutral value; Medium with explicit reasoning
// avoids both false reassurance and false alarm.
func DegradedRisk() RiskAssessment {
	return RiskAssessment{
		RiskCategory: RiskMedium,
		Reasoning:    "The risk assessment service is temporarily unavailable, so no category could be computed from the supplied data. Please retry, and rely on professional clinical judgment in the meantime. " + Disclaimer,
		KeyDrivers:   "Assessment unavailable.",
	}
}

// DegradedUrgent is the urgent flow's answer when detection could not run.
func DegradedUrgent() UrgentFindings {
	return UrgentFindings{
		UrgentConditionsDetected: false,
		EscalationAlerts:         []EscalationAlert{},
	}
}
