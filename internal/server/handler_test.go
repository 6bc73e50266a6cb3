package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medimind/internal/llm"
	"medimind/internal/schema"
	"medimind/internal/triage"
)

func newTestRouter(t *testing.T, fake *llm.FakeClient) http.Handler {
	t.Helper()
	svc, err := triage.New(fake, zap.NewNop(), triage.Options{
		RetryAttempts: 1,
		RetryBackoff:  time.Millisecond,
	})
	require.NoError(t, err)
	return NewHandler(svc, nil, nil, zap.NewNop()).Routes()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSimpleDiagnosesEndpoint(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.JSONByPhase["simple_diagnoses"] = json.RawMessage(`[{"diagnosis":"Common cold","justification":"Runny nose"}]`)
	h := newTestRouter(t, fake)

	rec := postJSON(t, h, "/api/diagnose/simple", schema.SimpleDiagnosisInput{Symptoms: "runny nose"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Diagnoses []schema.SimpleDiagnosis `json:"diagnoses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Diagnoses, 1)
	assert.Equal(t, "Common cold", resp.Diagnoses[0].Diagnosis)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSimpleDiagnosesEndpoint_BadBody(t *testing.T) {
	h := newTestRouter(t, llm.NewFakeClient())

	req := httptest.NewRequest(http.MethodPost, "/api/diagnose/simple", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRiskEndpoint_MissingBundleField(t *testing.T) {
	h := newTestRouter(t, llm.NewFakeClient())

	rec := postJSON(t, h, "/api/risk", schema.PatientBundle{Symptoms: "chest pain"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "patientHistory")
}

func TestRiskEndpoint_DegradedStillOK(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.JSONErr = llm.ErrUnavailable
	h := newTestRouter(t, fake)

	rec := postJSON(t, h, "/api/risk", schema.PatientBundle{
		PatientHistory:   "h",
		Symptoms:         "s",
		Vitals:           "v",
		Labs:             "l",
		Medications:      "m",
		ImagingSummaries: "i",
		ClinicalNotes:    "c",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out schema.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, schema.RiskMedium, out.RiskCategory)
}

func TestQnaEndpoint_TurnFailureIs503(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.JSONErr = llm.ErrUnavailable
	h := newTestRouter(t, fake)

	rec := postJSON(t, h, "/api/qna", schema.QnaInput{History: []schema.ConversationTurn{
		{Role: schema.RoleUser, Text: "I feel dizzy"},
	}})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "retry")
	assert.Equal(t, schema.Disclaimer, resp["disclaimer"])
}

func TestChatEndpoint_OfflineFallback(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.ChatErr = llm.ErrUnavailable
	h := newTestRouter(t, fake)

	rec := postJSON(t, h, "/api/chat", schema.ChatInput{Query: "I have a headache"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["response"], "Offline advice for a headache")
}

func TestHistoryEndpoints_Unconfigured(t *testing.T) {
	h := newTestRouter(t, llm.NewFakeClient())

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Analyses []json.RawMessage `json:"analyses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Analyses)

	req = httptest.NewRequest(http.MethodGet, "/api/history/does-not-exist", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t, llm.NewFakeClient())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics_LabelUsesRoutePattern(t *testing.T) {
	h := newTestRouter(t, llm.NewFakeClient())

	for _, id := range []string{"first-id", "second-id"} {
		req := httptest.NewRequest(http.MethodGet, "/api/history/"+id, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
	}

	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var paths []string
	for _, mf := range mfs {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "path" {
					paths = append(paths, lp.GetValue())
				}
			}
		}
	}
	assert.Contains(t, paths, "/api/history/{id}")
	assert.NotContains(t, paths, "/api/history/first-id")
	assert.NotContains(t, paths, "/api/history/second-id")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, llm.NewFakeClient())

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
