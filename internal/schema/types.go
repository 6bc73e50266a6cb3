// Package schema is the contract layer: the exact input and output shapes
// of every diagnostic flow, the validation rules applied to model output,
// and the degraded-response constructors used when a flow cannot produce a
// real result.
package schema

// Disclaimer is the mandatory wording attached to every diagnosis report.
// Callers must receive it verbatim, including on degraded responses.
const Disclaimer = "This is an AI-generated analysis and not a substitute for professional medical advice. Please consult a qualified healthcare provider for a definitive diagnosis and treatment plan."

// ChatDisclaimer is the sentence appended to chat answers that carry
// health guidance.
const ChatDisclaimer = "I am an AI assistant, not a doctor. Please consult a qualified healthcare professional for medical advice."

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message in a caller-owned conversation history.
// The core never stores turns between calls; the full history is supplied
// each turn and the extended sequence stays with the caller.
type ConversationTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// SimpleDiagnosisInput feeds the simple-diagnosis flow.
type SimpleDiagnosisInput struct {
	Symptoms      string `json:"symptoms"`
	ReportDataURI string `json:"reportDataUri,omitempty"`
}

// DetailedDiagnosisInput feeds the detailed-diagnosis flow.
type DetailedDiagnosisInput struct {
	Symptoms      string `json:"symptoms"`
	Description   string `json:"description,omitempty"`
	ReportDataURI string `json:"reportDataUri,omitempty"`
}

// PatientBundle is the fixed clinician-side input shared by the risk and
// ranked-diagnosis flows. Every field is required.
type PatientBundle struct {
	PatientHistory   string `json:"patientHistory"`
	Symptoms         string `json:"symptoms"`
	Vitals           string `json:"vitals"`
	Labs             string `json:"labs"`
	Medications      string `json:"medications"`
	ImagingSummaries string `json:"imagingSummaries"`
	ClinicalNotes    string `json:"clinicalNotes"`
}

// UrgentInput feeds the urgent-condition detection flow.
type UrgentInput struct {
	PatientData string `json:"patientData"`
}

// ChatInput feeds the free-text chat flow.
type ChatInput struct {
	Query   string             `json:"query"`
	History []ConversationTurn `json:"history,omitempty"`
}

// QnaInput feeds the progressive Q&A state machine. History carries the
// full conversation including the latest user answer.
type QnaInput struct {
	History []ConversationTurn `json:"history"`
}

// SimpleDiagnosis is one entry of the simple flow's unranked output.
type SimpleDiagnosis struct {
	Diagnosis     string   `json:"diagnosis"`
	Justification string   `json:"justification"`
	Medications   []string `json:"medications,omitempty"`
}

// Condition is one ranked candidate in a detailed diagnosis report.
type Condition struct {
	Name                  string   `json:"name"`
	ConfidenceScore       int      `json:"confidenceScore"`
	Explanation           string   `json:"explanation"`
	Evidence              []string `json:"evidence"`
	DifferentialDiagnoses []string `json:"differentialDiagnoses"`
	Medications           []string `json:"medications"`
}

// Biomarker is a structured lab or vital value extracted from an uploaded
// report, with its normal reference range. Only populated when a report is
// supplied; otherwise an empty slice, never nil.
type Biomarker struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Unit        string `json:"unit"`
	NormalRange string `json:"normalRange"`
	Explanation string `json:"explanation"`
}

// RedFlag is an urgent finding that requires escalation language and an
// elevated risk score.
type RedFlag struct {
	Finding   string `json:"finding"`
	Reasoning string `json:"reasoning"`
}

// DataQuality scores how complete and legible the supplied data was.
type DataQuality struct {
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}

// DiagnosisReport is the detailed flow's output. It is constructed fresh
// per request and never mutated afterwards; persistence is the caller's
// concern.
type DiagnosisReport struct {
	DataQuality     DataQuality `json:"dataQuality"`
	RedFlags        []RedFlag   `json:"redFlags"`
	Biomarkers      []Biomarker `json:"biomarkers"`
	Conditions      []Condition `json:"conditions"`
	RiskScore       int         `json:"riskScore"`
	VitalsToMonitor []string    `json:"vitalsToMonitor"`
	NextSteps       string      `json:"nextSteps"`
	SummaryReport   string      `json:"summaryReport"`
	Disclaimer      string      `json:"disclaimer"`
}

// RiskAssessment is the risk-categorization flow's output.
type RiskAssessment struct {
	RiskCategory string `json:"riskCategory"`
	Reasoning    string `json:"reasoning"`
	KeyDrivers   string `json:"keyDrivers"`
}

// Risk categories.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// RankedDiagnosis is one entry of the ranked flow's output, ordered by
// confidence descending per the prompt contract.
type RankedDiagnosis struct {
	Diagnosis     string  `json:"diagnosis"`
	Confidence    float64 `json:"confidence"`
	Justification string  `json:"justification"`
}

// EscalationAlert is one urgent finding with its assigned urgency level.
type EscalationAlert struct {
	Condition     string `json:"condition"`
	UrgencyLevel  string `json:"urgencyLevel"`
	Justification string `json:"justification"`
}

// Urgency levels.
const (
	UrgencyImmediate = "Immediate"
	UrgencyHigh      = "High"
	UrgencyMedium    = "Medium"
)

// UrgentFindings is the urgent-condition flow's output. After flow
// normalization UrgentConditionsDetected always equals
// len(EscalationAlerts) > 0.
type UrgentFindings struct {
	UrgentConditionsDetected bool              `json:"urgentConditionsDetected"`
	EscalationAlerts         []EscalationAlert `json:"escalationAlerts"`
}

// QnaReply is the Q&A machine's output for both states. When IsFinal is
// true, Question carries the diagnosis summary; the overload keeps the
// caller's polling loop uniform.
type QnaReply struct {
	Question  string   `json:"question"`
	Options   []string `json:"options,omitempty"`
	Diagnosis string   `json:"diagnosis,omitempty"`
	IsFinal   bool     `json:"isFinal"`
}
