// Package server binds the diagnostic flows to HTTP. Handlers translate
// JSON bodies to flow inputs and flow outcomes to status codes; the
// flows themselves stay transport-agnostic.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"medimind/internal/history"
	"medimind/internal/report"
	"medimind/internal/schema"
	"medimind/internal/triage"
)

// Handler wires the flow service to the router. History and reports are
// optional; a nil store disables persistence without changing the API.
type Handler struct {
	svc     *triage.Service
	hist    *history.Store
	reports *report.S3Store
	log     *zap.Logger
}

func NewHandler(svc *triage.Service, hist *history.Store, reports *report.S3Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, hist: hist, reports: reports, log: log}
}

// Routes builds the full router including middleware and operational
// endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(h.log))
	r.Use(metricsMiddleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/diagnose/simple", h.SimpleDiagnoses)
		r.Post("/diagnose/detailed", h.DetailedDiagnoses)
		r.Post("/diagnose/ranked", h.RankedDiagnoses)
		r.Post("/risk", h.CategorizeRisk)
		r.Post("/urgent", h.DetectUrgent)
		r.Post("/qna", h.QnaTurn)
		r.Post("/chat", h.Chat)
		r.Get("/history", h.ListHistory)
		r.Get("/history/{id}", h.GetHistory)
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SimpleDiagnoses(w http.ResponseWriter, r *http.Request) {
	var in schema.SimpleDiagnosisInput
	if !decode(w, r, &in) {
		return
	}
	out, err := h.svc.GenerateSimpleDiagnoses(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.record(r.Context(), "simple_diagnoses", in, out)
	writeJSON(w, http.StatusOK, map[string]any{"diagnoses": out})
}

func (h *Handler) DetailedDiagnoses(w http.ResponseWriter, r *http.Request) {
	var in schema.DetailedDiagnosisInput
	if !decode(w, r, &in) {
		return
	}
	out, err := h.svc.GenerateDetailedDiagnoses(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	id := h.record(r.Context(), "detailed_diagnoses", in, out)
	h.archiveReport(r.Context(), id, in.ReportDataURI)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) RankedDiagnoses(w http.ResponseWriter, r *http.Request) {
	var in schema.PatientBundle
	if !decode(w, r, &in) {
		return
	}
	out, err := h.svc.GenerateRankedDiagnoses(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.record(r.Context(), "ranked_diagnoses", in, out)
	writeJSON(w, http.StatusOK, map[string]any{"diagnoses": out})
}

func (h *Handler) CategorizeRisk(w http.ResponseWriter, r *http.Request) {
	var in schema.PatientBundle
	if !decode(w, r, &in) {
		return
	}
	out, err := h.svc.CategorizePatientRisk(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.record(r.Context(), "categorize_risk", in, out)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DetectUrgent(w http.ResponseWriter, r *http.Request) {
	var in schema.UrgentInput
	if !decode(w, r, &in) {
		return
	}
	out, err := h.svc.DetectUrgentConditions(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.record(r.Context(), "urgent_conditions", in, out)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) QnaTurn(w http.ResponseWriter, r *http.Request) {
	var in schema.QnaInput
	if !decode(w, r, &in) {
		return
	}
	out, err := h.svc.NextTurn(r.Context(), in.History)
	if err != nil {
		writeError(w, err)
		return
	}
	if out.IsFinal {
		h.record(r.Context(), "qna_diagnosis", in, out)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var in schema.ChatInput
	if !decode(w, r, &in) {
		return
	}
	out, err := h.svc.Ask(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": out})
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.hist.List(r.URL.Query().Get("flow"), limit)
	if err != nil {
		h.log.Error("list history", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": list})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	a, ok := h.hist.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// record persists one completed analysis. Persistence failures are
// logged and swallowed so a storage outage never breaks a diagnosis.
func (h *Handler) record(ctx context.Context, flow string, input, output any) string {
	if h.hist == nil {
		return ""
	}
	in, _ := json.Marshal(input)
	out, _ := json.Marshal(output)
	id, err := h.hist.Record(flow, in, out)
	if err != nil {
		h.log.Warn("record analysis", zap.String("flow", flow), zap.Error(err))
		return ""
	}
	if id != "" {
		analysesRecorded.Inc()
	}
	return id
}

func (h *Handler) archiveReport(ctx context.Context, analysisID, dataURI string) {
	if h.reports == nil || analysisID == "" || dataURI == "" {
		return
	}
	f, err := report.ParseDataURI(dataURI)
	if err != nil {
		h.log.Warn("archive report", zap.Error(err))
		return
	}
	if _, err := h.reports.Put(ctx, analysisID, f); err != nil {
		h.log.Warn("archive report", zap.Error(err))
	}
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps flow errors to status codes. Bad input is the
// caller's fault; a failed Q&A turn is the only flow outcome surfaced
// as unavailable, and its message already carries retry guidance.
func writeError(w http.ResponseWriter, err error) {
	var inputErr *schema.InputError
	if errors.As(err, &inputErr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": inputErr.Error()})
		return
	}
	if errors.Is(err, triage.ErrTurnFailed) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":      err.Error(),
			"disclaimer": schema.Disclaimer,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
