package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"launchaudit/internal/adapters/postgres"
	"launchaudit/internal/domain"
	"launchaudit/internal/services/reports"
	"launchaudit/internal/workers/auditrunner"
)

// defaultWaitTimeout bounds the blocking ?wait=true path. A full audit can
// take close to the browser and lab timeouts combined.
const defaultWaitTimeout = 90 * time.Second

type createAuditRequest struct {
	URL string `json:"url"`
}

type auditResponse struct {
	ID         string          `json:"id"`
	URL        string          `json:"url"`
	Status     string          `json:"status"`
	Error      *string         `json:"error,omitempty"`
	LMS        *float64        `json:"lms,omitempty"`
	RRI        *float64        `json:"rri,omitempty"`
	PMI        *float64        `json:"pmi,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
}

type auditAcceptedResponse struct {
	AuditID string `json:"auditId"`
	Status  string `json:"status"`
}

type reportResponse struct {
	AuditRunID    string          `json:"auditRunId"`
	LMS           float64         `json:"lms"`
	RRI           float64         `json:"rri"`
	PMI           float64         `json:"pmi"`
	BadgeEligible bool            `json:"badgeEligible"`
	Result        json.RawMessage `json:"result"`
	ComputedAt    time.Time       `json:"computedAt"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var req createAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"url\": ...}")
		return
	}

	id, err := s.audits.Enqueue(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, auditAcceptedResponse{AuditID: id, Status: domain.StatusPending})
		return
	}

	// Blocking path: process the audit inline with the same logic the
	// background workers use.
	timeout := defaultWaitTimeout
	if v := r.URL.Query().Get("timeout"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	// A processing failure is recorded on the run; return the run either way.
	_ = auditrunner.ProcessInline(ctx, s.jobs, s.processor, id)

	run, err := s.audits.Get(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toAuditResponse(run))
}

func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	run, err := s.audits.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "audit not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toAuditResponse(run))
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.GetLatest(r.Context(), chi.URLParam(r, "domain"))
	if err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no report for domain")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{
		AuditRunID:    rep.AuditRunRef,
		LMS:           rep.LMS,
		RRI:           rep.RRI,
		PMI:           rep.PMI,
		BadgeEligible: rep.BadgeEligible,
		Result:        rep.Result,
		ComputedAt:    rep.ComputedAt,
	})
}

func toAuditResponse(run domain.AuditRun) auditResponse {
	return auditResponse{
		ID:         run.ID,
		URL:        run.URL,
		Status:     run.Status,
		Error:      run.Error,
		LMS:        run.LMS,
		RRI:        run.RRI,
		PMI:        run.PMI,
		Result:     run.Result,
		CreatedAt:  run.CreatedAt,
		FinishedAt: run.FinishedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
