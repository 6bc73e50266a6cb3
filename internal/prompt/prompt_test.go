package prompt

import (
	"strings"
	"testing"

	"medimind/internal/schema"
)

func TestCompile_RendersSections(t *testing.T) {
	spec := Spec{
		Purpose:    "Suggest possible conditions.",
		Background: "Patient-facing triage.",
		Input:      map[string]any{"symptoms": "fever"},
		OutputFields: []Field{
			{Name: "diagnosis", Type: "string", Required: true, Description: "Condition name."},
			{Name: "medications", Type: "[]string", Required: false},
		},
		Constraints:  []string{"No markdown."},
		Rules:        []string{"Be concise."},
		Safety:       []string{"Never prescribe."},
		OutputFormat: "JSON only.",
	}

	out, err := Compile(spec)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	wantSections := []string{
		"[PURPOSE]",
		"[BACKGROUND]",
		"[INPUT]",
		"[OUTPUT]",
		"[CONSTRAINTS]",
		"[RULES]",
		"[SAFETY]",
		"[OUTPUT_FORMAT]",
	}
	for _, sec := range wantSections {
		if !strings.Contains(out, sec) {
			t.Fatalf("expected section %s in prompt:\n%s", sec, out)
		}
	}
	if !strings.Contains(out, "- diagnosis (string, required): Condition name.") {
		t.Fatalf("expected formatted output field, got:\n%s", out)
	}
	if !strings.Contains(out, "- medications ([]string, optional)") {
		t.Fatalf("expected optional field line, got:\n%s", out)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	spec := Spec{
		Purpose:      "Rank diagnoses.",
		Input:        schema.PatientBundle{Symptoms: "cough", Labs: "WBC 12"},
		OutputFields: []Field{{Name: "diagnosis", Type: "string", Required: true}},
	}
	a, err := Compile(spec)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	b, err := Compile(spec)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if a != b {
		t.Fatal("expected identical output for identical input")
	}
}

func TestCompile_OmitsEmptySections(t *testing.T) {
	out, err := Compile(Spec{
		Purpose:      "Do the thing.",
		OutputFields: []Field{{Name: "x", Type: "string", Required: true}},
	})
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	for _, sec := range []string{"[BACKGROUND]", "[CONSTRAINTS]", "[RULES]", "[SAFETY]", "[OUTPUT_FORMAT]"} {
		if strings.Contains(out, sec) {
			t.Fatalf("did not expect section %s:\n%s", sec, out)
		}
	}
}

func TestCompile_RequiresPurposeAndFields(t *testing.T) {
	if _, err := Compile(Spec{OutputFields: []Field{{Name: "x", Type: "string"}}}); err == nil {
		t.Fatal("expected error for empty purpose")
	}
	if _, err := Compile(Spec{Purpose: "p"}); err == nil {
		t.Fatal("expected error for empty output fields")
	}
}

func TestTemplates_CarrySafetyAndFormat(t *testing.T) {
	cases := []struct {
		name string
		f    func() (string, error)
	}{
		{"simple", func() (string, error) {
			return SimpleDiagnoses(schema.SimpleDiagnosisInput{Symptoms: "fever"})
		}},
		{"detailed", func() (string, error) {
			return DetailedDiagnoses(schema.DetailedDiagnosisInput{Symptoms: "fever"})
		}},
		{"risk", func() (string, error) {
			return CategorizeRisk(schema.PatientBundle{Symptoms: "fever"})
		}},
		{"ranked", func() (string, error) {
			return RankedDiagnoses(schema.PatientBundle{Symptoms: "fever"})
		}},
		{"urgent", func() (string, error) {
			return DetectUrgent(schema.UrgentInput{PatientData: "BP 80/50"})
		}},
		{"qna_question", func() (string, error) {
			return QnaQuestion([]schema.ConversationTurn{{Role: schema.RoleUser, Text: "headache"}})
		}},
		{"qna_diagnosis", func() (string, error) {
			return QnaDiagnosis([]schema.ConversationTurn{{Role: schema.RoleUser, Text: "headache"}})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := tc.f()
			if err != nil {
				t.Fatalf("template error: %v", err)
			}
			if !strings.Contains(out, "[SAFETY]") {
				t.Fatalf("expected safety block in %s prompt", tc.name)
			}
			if !strings.Contains(out, "[OUTPUT_FORMAT]") {
				t.Fatalf("expected output format block in %s prompt", tc.name)
			}
		})
	}
}

func TestChatSystem_MentionsDisclaimer(t *testing.T) {
	sys := ChatSystem()
	if !strings.Contains(sys, schema.ChatDisclaimer) {
		t.Fatal("expected chat system prompt to carry the assistant disclaimer")
	}
}
