package llm

import (
	"encoding/json"
	"testing"
)

func TestUnwrapArrayEnvelope(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single-key array wrapper is unwrapped",
			in:   `{"diagnoses": [{"diagnosis":"Flu","justification":"Fever"}]}`,
			want: `[{"diagnosis":"Flu","justification":"Fever"}]`,
		},
		{
			name: "bare array passes through",
			in:   `[{"diagnosis":"Flu","justification":"Fever"}]`,
			want: `[{"diagnosis":"Flu","justification":"Fever"}]`,
		},
		{
			name: "object payload passes through",
			in:   `{"riskCategory":"Low","reasoning":"r","keyDrivers":"k"}`,
			want: `{"riskCategory":"Low","reasoning":"r","keyDrivers":"k"}`,
		},
		{
			name: "single-key non-array value passes through",
			in:   `{"urgentConditionsDetected": false}`,
			want: `{"urgentConditionsDetected": false}`,
		},
		{
			name: "multi-key object with array values passes through",
			in:   `{"urgentConditionsDetected": true, "escalationAlerts": []}`,
			want: `{"urgentConditionsDetected": true, "escalationAlerts": []}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := unwrapArrayEnvelope(json.RawMessage(tc.in))
			if string(got) != tc.want {
				t.Fatalf("unwrapArrayEnvelope(%s) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}
