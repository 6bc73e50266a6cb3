package prompt

import (
	"medimind/internal/schema"
)

// One template per flow. Each function compiles the final prompt from a
// validated input object; the strict-JSON and safety presets are applied
// to every diagnostic template.

// SimpleDiagnoses instructs the model to list a few likely diagnoses with
// justifications, without confidence scores.
func SimpleDiagnoses(in schema.SimpleDiagnosisInput) (string, error) {
	spec := Spec{
		Purpose: "Provide a simple list of possible diagnoses based on user-provided symptoms and, when present, a medical report.",
		Background: "You are a medical AI assistant performing a quick preliminary analysis. " +
			"For each diagnosis give a brief evidence-based justification grounded in the input. " +
			"Do not provide confidence scores; this is a simple analysis.",
		Input: in,
		OutputFields: []Field{
			{Name: "diagnosis", Type: "string", Required: true, Description: "The diagnosis."},
			{Name: "justification", Type: "string", Required: true, Description: "The evidence-based justification for the diagnosis."},
			{Name: "medications", Type: "[]string", Required: false, Description: "Common over-the-counter options, each with a note to consult a doctor."},
		},
		Rules: []string{
			"If reportDataUri is present, extract medical values from the report and use them as evidence.",
			"If the input is empty or nonsensical, return an empty array.",
		},
		OutputFormat: "A JSON array of diagnosis objects.",
	}
	return Compile(Apply(spec, StrictJSON(), Safety()))
}

// DetailedDiagnoses instructs the model to produce a full structured
// report: data quality, red flags, biomarkers, ranked conditions, overall
// risk, and a summary.
func DetailedDiagnoses(in schema.DetailedDiagnosisInput) (string, error) {
	spec := Spec{
		Purpose: "Produce a detailed, structured, traceable, and explainable preliminary diagnosis from the supplied symptoms, optional description, and optional medical report.",
		Background: "You are an expert medical AI assistant. When a report is supplied, perform OCR and extract all " +
			"specific medical data, values, and clinical notes from it; use symptoms and description as context.",
		Input: in,
		OutputFields: []Field{
			{Name: "dataQuality", Type: "object{score int 0-100, suggestions []string}", Required: true, Description: "Quality and completeness of the provided data, with actionable suggestions when quality is low (e.g. \"Scan is blurry, please upload a higher resolution image.\")."},
			{Name: "redFlags", Type: "[]object{finding, reasoning}", Required: true, Description: "Urgent, life-threatening findings based on established critical value thresholds. Empty array when none."},
			{Name: "biomarkers", Type: "[]object{name, value, unit, normalRange, explanation}", Required: true, Description: "Key biomarkers extracted from the report (e.g. Hemoglobin, Glucose, Blood Pressure). Empty array when none found."},
			{Name: "conditions", Type: "[]object{name, confidenceScore int 0-100, explanation, evidence []string, differentialDiagnoses []string, medications []string}", Required: true, Description: "2-4 possible conditions ranked from most to least likely; evidence quotes the supplied input."},
			{Name: "riskScore", Type: "int 0-100", Required: true, Description: "Overall risk score across all findings."},
			{Name: "vitalsToMonitor", Type: "[]string", Required: true, Description: "Key vital signs the user should monitor."},
			{Name: "nextSteps", Type: "string", Required: true, Description: "Clear, actionable recommendations, such as \"Consult a primary care physician\" or \"Visit an urgent care clinic within 24 hours\"."},
			{Name: "summaryReport", Type: "string", Required: true, Description: "Concise natural-language summary directly linking findings to the conclusion."},
			{Name: "disclaimer", Type: "string", Required: true, Description: "The mandatory disclaimer, verbatim."},
		},
		Rules: []string{
			"Rank conditions most likely first.",
			"Every evidence entry must trace to the supplied input text or report content.",
			"Severe findings in the report must trigger red flags and a high risk score.",
		},
		OutputFormat: "A single JSON object with all output fields.",
	}
	return Compile(Apply(spec, StrictJSON(), Safety()))
}

// CategorizeRisk instructs the model to assign a Low/Medium/High risk
// category with explainable reasoning.
func CategorizeRisk(in schema.PatientBundle) (string, error) {
	spec := Spec{
		Purpose:    "Categorize the patient as Low, Medium, or High risk based on the supplied clinical data.",
		Background: "You are an expert medical professional performing risk stratification.",
		Input:      in,
		OutputFields: []Field{
			{Name: "riskCategory", Type: "enum Low|Medium|High", Required: true, Description: "The risk category."},
			{Name: "reasoning", Type: "string", Required: true, Description: "Concise explanation of the assigned category."},
			{Name: "keyDrivers", Type: "string", Required: true, Description: "The key factors driving the assignment."},
		},
		OutputFormat: "A single JSON object with riskCategory, reasoning, and keyDrivers.",
	}
	return Compile(Apply(spec, StrictJSON(), Safety()))
}

// RankedDiagnoses instructs the model to return diagnoses ordered by
// confidence descending. The ordering is asserted here, not re-checked by
// local heuristics.
func RankedDiagnoses(in schema.PatientBundle) (string, error) {
	spec := Spec{
		Purpose:    "Generate a ranked list of likely diagnoses for the patient, given their medical data.",
		Background: "You are a medical AI assistant producing a differential for clinician review.",
		Input:      in,
		OutputFields: []Field{
			{Name: "diagnosis", Type: "string", Required: true, Description: "The diagnosis."},
			{Name: "confidence", Type: "number 0-1", Required: true, Description: "Confidence score for the diagnosis."},
			{Name: "justification", Type: "string", Required: true, Description: "Evidence-based justification linked to specific patient data points."},
		},
		Rules: []string{
			"Sort by confidence descending: the most likely diagnosis first.",
			"Link every justification to specific data points from the input.",
		},
		OutputFormat: "A JSON array of diagnosis objects, most likely first.",
	}
	return Compile(Apply(spec, StrictJSON(), Safety()))
}

// DetectUrgent instructs the model to flag urgent, life-threatening
// conditions and emit escalation alerts.
func DetectUrgent(in schema.UrgentInput) (string, error) {
	spec := Spec{
		Purpose:    "Detect urgent, life-threatening conditions in the patient data and generate escalation alerts.",
		Background: "You are a medical AI assistant specializing in recognizing emergencies from consolidated patient data.",
		Input:      in,
		OutputFields: []Field{
			{Name: "urgentConditionsDetected", Type: "bool", Required: true, Description: "True if any urgent condition was detected."},
			{Name: "escalationAlerts", Type: "[]object{condition, urgencyLevel enum Immediate|High|Medium, justification}", Required: true, Description: "One alert per detected urgent condition; empty array when none."},
		},
		Rules: []string{
			"If no urgent conditions are detected, set urgentConditionsDetected to false and escalationAlerts to an empty array.",
			"Justifications must cite the specific patient data points that triggered the alert.",
		},
		OutputFormat: "A single JSON object with both output fields.",
	}
	return Compile(Apply(spec, StrictJSON(), Safety()))
}

// QnaQuestion instructs the model to ask the single most informative next
// clarifying question.
func QnaQuestion(history []schema.ConversationTurn) (string, error) {
	spec := Spec{
		Purpose:    "Ask the single most informative next question to narrow down the user's condition.",
		Background: "You are a medical Q&A assistant conducting a progressive diagnosis. The input holds the conversation so far.",
		Input:      schema.QnaInput{History: history},
		OutputFields: []Field{
			{Name: "question", Type: "string", Required: true, Description: "The next question to ask the user."},
			{Name: "options", Type: "[]string", Required: false, Description: "Multiple-choice options guiding the answer, when helpful (e.g. \"Sharp\", \"Dull\", \"Throbbing\" for pain)."},
			{Name: "isFinal", Type: "bool", Required: true, Description: "Must be false."},
		},
		Rules: []string{
			"Keep the question concise and ask exactly one.",
			"If the user's last answer was \"Nothing\" or \"I don't know\", ask a different question.",
			"Set isFinal to false.",
		},
		OutputFormat: "A single JSON object with question, optional options, and isFinal.",
	}
	return Compile(Apply(spec, StrictJSON(), Safety()))
}

// QnaDiagnosis instructs the model to close the Q&A session with a ranked
// final diagnosis carried in the question field.
func QnaDiagnosis(history []schema.ConversationTurn) (string, error) {
	spec := Spec{
		Purpose:    "Determine the most likely condition from the full Q&A conversation and respond with a final diagnosis.",
		Background: "You are a medical diagnosis assistant. The input holds the complete conversation history with the user.",
		Input:      schema.QnaInput{History: history},
		OutputFields: []Field{
			{Name: "question", Type: "string", Required: true, Description: "A summary of the final diagnosis."},
			{Name: "diagnosis", Type: "string", Required: true, Description: "A ranked list of 2-4 possible conditions with confidence scores, as text."},
			{Name: "isFinal", Type: "bool", Required: true, Description: "Must be true."},
		},
		Rules: []string{
			"Provide 2-4 possible conditions ranked by confidence, with a confidence score for each.",
			"Set isFinal to true.",
		},
		OutputFormat: "A single JSON object with question, diagnosis, and isFinal.",
	}
	return Compile(Apply(spec, StrictJSON(), Safety()))
}

// ChatSystem is the system prompt for the free-text assistant. It is a
// fixed document, not compiled per request.
func ChatSystem() string {
	return "You are a friendly and helpful medical AI assistant named MediMind. " +
		"Answer user questions about health, symptoms, and medical conditions with informative and safe responses. " +
		"Do not provide a diagnosis: you may explain which conditions are associated with symptoms, but never diagnose. " +
		"Always include this disclaimer in answers containing health guidance: \"" + schema.ChatDisclaimer + "\""
}
