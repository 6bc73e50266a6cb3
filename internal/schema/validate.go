package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"medimind/internal/util/jsonutil"
)

// ViolationError reports model output that failed contract validation. It
// is treated as a model failure by the flows, never silently coerced.
type ViolationError struct {
	Flow   string
	Causes []string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("schema: %s output violates contract: %s", e.Flow, strings.Join(e.Causes, "; "))
}

// InputError reports caller input that failed validation before any model
// call. HTTP bindings map it to a 4xx.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("schema: invalid input: %s %s", e.Field, e.Message)
}

const simpleSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["diagnosis", "justification"],
    "properties": {
      "diagnosis": {"type": "string"},
      "justification": {"type": "string"},
      "medications": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

const reportSchema = `{
  "type": "object",
  "required": ["dataQuality", "riskScore", "nextSteps", "summaryReport", "disclaimer"],
  "properties": {
    "dataQuality": {
      "type": "object",
      "required": ["score"],
      "properties": {
        "score": {"type": "integer", "minimum": 0, "maximum": 100},
        "suggestions": {"type": "array", "items": {"type": "string"}}
      }
    },
    "redFlags": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["finding", "reasoning"],
        "properties": {
          "finding": {"type": "string"},
          "reasoning": {"type": "string"}
        }
      }
    },
    "biomarkers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "value"],
        "properties": {
          "name": {"type": "string"},
          "value": {"type": "string"},
          "unit": {"type": "string"},
          "normalRange": {"type": "string"},
          "explanation": {"type": "string"}
        }
      }
    },
    "conditions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "confidenceScore", "explanation"],
        "properties": {
          "name": {"type": "string"},
          "confidenceScore": {"type": "integer", "minimum": 0, "maximum": 100},
          "explanation": {"type": "string"},
          "evidence": {"type": "array", "items": {"type": "string"}},
          "differentialDiagnoses": {"type": "array", "items": {"type": "string"}},
          "medications": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "riskScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "vitalsToMonitor": {"type": "array", "items": {"type": "string"}},
    "nextSteps": {"type": "string"},
    "summaryReport": {"type": "string"},
    "disclaimer": {"type": "string"}
  }
}`

const riskSchema = `{
  "type": "object",
  "required": ["riskCategory", "reasoning", "keyDrivers"],
  "properties": {
    "riskCategory": {"type": "string", "enum": ["Low", "Medium", "High"]},
    "reasoning": {"type": "string"},
    "keyDrivers": {"type": "string"}
  }
}`

const rankedSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["diagnosis", "confidence", "justification"],
    "properties": {
      "diagnosis": {"type": "string"},
      "confidence": {"type": "number", "minimum": 0, "maximum": 1},
      "justification": {"type": "string"}
    }
  }
}`

const urgentSchema = `{
  "type": "object",
  "required": ["urgentConditionsDetected"],
  "properties": {
    "urgentConditionsDetected": {"type": "boolean"},
    "escalationAlerts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["condition", "urgencyLevel", "justification"],
        "properties": {
          "condition": {"type": "string"},
          "urgencyLevel": {"type": "string", "enum": ["Immediate", "High", "Medium"]},
          "justification": {"type": "string"}
        }
      }
    }
  }
}`

const qnaSchema = `{
  "type": "object",
  "required": ["question", "isFinal"],
  "properties": {
    "question": {"type": "string"},
    "options": {"type": "array", "items": {"type": "string"}},
    "diagnosis": {"type": "string"},
    "isFinal": {"type": "boolean"}
  }
}`

// validate checks raw against the flow's declared JSON Schema, then
// decodes it into out. Any mismatch becomes a ViolationError.
func validate(flow, schemaDoc string, raw json.RawMessage, out any) error {
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaDoc),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return &ViolationError{Flow: flow, Causes: []string{"not valid JSON: " + err.Error()}}
	}
	if !res.Valid() {
		causes := make([]string, 0, len(res.Errors()))
		for _, re := range res.Errors() {
			causes = append(causes, re.String())
		}
		return &ViolationError{Flow: flow, Causes: causes}
	}
	if err := jsonutil.UnmarshalRaw(raw, out); err != nil {
		return &ViolationError{Flow: flow, Causes: []string{"decode: " + err.Error()}}
	}
	return nil
}

// ParseSimpleDiagnoses validates and decodes the simple flow's output.
func ParseSimpleDiagnoses(raw json.RawMessage) ([]SimpleDiagnosis, error) {
	var out []SimpleDiagnosis
	if err := validate("simple_diagnoses", simpleSchema, raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []SimpleDiagnosis{}
	}
	return out, nil
}

// ParseDiagnosisReport validates and decodes the detailed flow's output.
// Absent array fields are normalized to empty slices, never nil.
func ParseDiagnosisReport(raw json.RawMessage) (DiagnosisReport, error) {
	var out DiagnosisReport
	if err := validate("detailed_diagnoses", reportSchema, raw, &out); err != nil {
		return DiagnosisReport{}, err
	}
	out.normalize()
	return out, nil
}

func (r *DiagnosisReport) normalize() {
	if r.RedFlags == nil {
		r.RedFlags = []RedFlag{}
	}
	if r.Biomarkers == nil {
		r.Biomarkers = []Biomarker{}
	}
	if r.Conditions == nil {
		r.Conditions = []Condition{}
	}
	if r.VitalsToMonitor == nil {
		r.VitalsToMonitor = []string{}
	}
	if r.DataQuality.Suggestions == nil {
		r.DataQuality.Suggestions = []string{}
	}
	for i := range r.Conditions {
		c := &r.Conditions[i]
		if c.Evidence == nil {
			c.Evidence = []string{}
		}
		if c.DifferentialDiagnoses == nil {
			c.DifferentialDiagnoses = []string{}
		}
		if c.Medications == nil {
			c.Medications = []string{}
		}
	}
}

// ParseRiskAssessment validates and decodes the risk flow's output.
func ParseRiskAssessment(raw json.RawMessage) (RiskAssessment, error) {
	var out RiskAssessment
	if err := validate("categorize_risk", riskSchema, raw, &out); err != nil {
		return RiskAssessment{}, err
	}
	return out, nil
}

// ParseRankedDiagnoses validates and decodes the ranked flow's output.
func ParseRankedDiagnoses(raw json.RawMessage) ([]RankedDiagnosis, error) {
	var out []RankedDiagnosis
	if err := validate("ranked_diagnoses", rankedSchema, raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []RankedDiagnosis{}
	}
	return out, nil
}

// ParseUrgentFindings validates and decodes the urgent flow's output. The
// urgentConditionsDetected/escalationAlerts consistency invariant is
// enforced by the flow, not here.
func ParseUrgentFindings(raw json.RawMessage) (UrgentFindings, error) {
	var out UrgentFindings
	if err := validate("urgent_conditions", urgentSchema, raw, &out); err != nil {
		return UrgentFindings{}, err
	}
	if out.EscalationAlerts == nil {
		out.EscalationAlerts = []EscalationAlert{}
	}
	return out, nil
}

// ParseQnaReply validates and decodes a Q&A turn output.
func ParseQnaReply(raw json.RawMessage) (QnaReply, error) {
	var out QnaReply
	if err := validate("qna", qnaSchema, raw, &out); err != nil {
		return QnaReply{}, err
	}
	return out, nil
}

// ValidatePatientBundle rejects bundles with missing fields. All seven are
// mandatory upstream; there is no empty-input shortcut for bundle flows.
func ValidatePatientBundle(b PatientBundle) error {
	fields := []struct{ name, value string }{
		{"patientHistory", b.PatientHistory},
		{"symptoms", b.Symptoms},
		{"vitals", b.Vitals},
		{"labs", b.Labs},
		{"medications", b.Medications},
		{"imagingSummaries", b.ImagingSummaries},
		{"clinicalNotes", b.ClinicalNotes},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &InputError{Field: f.name, Message: "is required"}
		}
	}
	return nil
}

// SanitizeHistory drops turns with no text and turns with an unknown role.
// Loose histories are closed off here rather than propagated into the
// prompt compiler.
func SanitizeHistory(history []ConversationTurn) []ConversationTurn {
	out := make([]ConversationTurn, 0, len(history))
	for _, t := range history {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		if t.Role != RoleUser && t.Role != RoleAssistant {
			continue
		}
		out = append(out, t)
	}
	return out
}
