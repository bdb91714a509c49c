package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchaudit/internal/adapters/memstore"
	"launchaudit/internal/adapters/postgres"
	"launchaudit/internal/domain"
	"launchaudit/internal/ports"
	"launchaudit/internal/services/reports"
)

type fakeAudits struct {
	enqueued   []string
	enqueueErr error
	runs       map[string]domain.AuditRun
}

func (f *fakeAudits) Enqueue(_ context.Context, url string) (string, error) {
	if f.enqueueErr != nil {
		return "", f.enqueueErr
	}
	f.enqueued = append(f.enqueued, url)
	return "audit-1", nil
}

func (f *fakeAudits) Get(_ context.Context, auditID string) (domain.AuditRun, error) {
	run, ok := f.runs[auditID]
	if !ok {
		return domain.AuditRun{}, postgres.ErrNotFound
	}
	return run, nil
}

type fakeReports struct {
	report domain.Report
	err    error
}

func (f *fakeReports) GetLatest(_ context.Context, rawurl string) (domain.Report, error) {
	return f.report, f.err
}

type fakeJobRepo struct {
	completed []string
	failed    map[string]string
}

func (f *fakeJobRepo) ClaimNext(_ context.Context) (ports.AuditJob, bool, error) {
	return ports.AuditJob{}, false, nil
}

func (f *fakeJobRepo) StartJobForAudit(_ context.Context, auditID string) (string, error) {
	return "job-" + auditID, nil
}

func (f *fakeJobRepo) MarkCompleted(_ context.Context, jobID string) error {
	f.completed = append(f.completed, jobID)
	return nil
}

func (f *fakeJobRepo) MarkFailed(_ context.Context, jobID, reason string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[jobID] = reason
	return nil
}

type processorFunc func(ctx context.Context, auditID string) error

func (f processorFunc) Process(ctx context.Context, auditID string) error { return f(ctx, auditID) }

func newTestServer(audits *fakeAudits, rep *fakeReports, jobs *fakeJobRepo, proc processorFunc) http.Handler {
	if proc == nil {
		proc = func(context.Context, string) error { return nil }
	}
	clock := &fixedClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	return New(audits, rep, jobs, proc, memstore.New(clock), clock).Routes()
}

func TestHealthz(t *testing.T) {
	h := newTestServer(&fakeAudits{}, &fakeReports{}, &fakeJobRepo{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateAuditAccepted(t *testing.T) {
	audits := &fakeAudits{}
	h := newTestServer(audits, &fakeReports{}, &fakeJobRepo{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/audits", strings.NewReader(`{"url":"https://example.com"}`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var body auditAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "audit-1", body.AuditID)
	assert.Equal(t, domain.StatusPending, body.Status)
	assert.Equal(t, []string{"https://example.com"}, audits.enqueued)
}

func TestCreateAuditRejectsBadBody(t *testing.T) {
	h := newTestServer(&fakeAudits{}, &fakeReports{}, &fakeJobRepo{}, nil)

	for _, body := range []string{"", "{}", "not json"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/audits", strings.NewReader(body))
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %q", body)
	}
}

func TestCreateAuditRejectsBadURL(t *testing.T) {
	audits := &fakeAudits{enqueueErr: errors.New(`unsupported url scheme "ftp"`)}
	h := newTestServer(audits, &fakeReports{}, &fakeJobRepo{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/audits", strings.NewReader(`{"url":"ftp://example.com"}`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported url scheme")
}

func TestCreateAuditWaitReturnsCompletedRun(t *testing.T) {
	lms := 72.5
	audits := &fakeAudits{runs: map[string]domain.AuditRun{
		"audit-1": {
			ID:     "audit-1",
			URL:    "https://example.com",
			Status: domain.StatusCompleted,
			LMS:    &lms,
		},
	}}
	jobs := &fakeJobRepo{}
	var processed []string
	proc := processorFunc(func(_ context.Context, auditID string) error {
		processed = append(processed, auditID)
		return nil
	})
	h := newTestServer(audits, &fakeReports{}, jobs, proc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/audits?wait=true", strings.NewReader(`{"url":"https://example.com"}`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"audit-1"}, processed)
	assert.Equal(t, []string{"job-audit-1"}, jobs.completed)

	var body auditResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.StatusCompleted, body.Status)
	require.NotNil(t, body.LMS)
	assert.Equal(t, 72.5, *body.LMS)
}

func TestCreateAuditWaitReturnsFailedRun(t *testing.T) {
	reason := "browser crashed"
	audits := &fakeAudits{runs: map[string]domain.AuditRun{
		"audit-1": {ID: "audit-1", Status: domain.StatusFailed, Error: &reason},
	}}
	jobs := &fakeJobRepo{}
	proc := processorFunc(func(context.Context, string) error { return errors.New(reason) })
	h := newTestServer(audits, &fakeReports{}, jobs, proc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/audits?wait=true", strings.NewReader(`{"url":"https://example.com"}`))
	h.ServeHTTP(rec, req)

	// The failure lives on the run record, not in the HTTP status.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "browser crashed", jobs.failed["job-audit-1"])

	var body auditResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.StatusFailed, body.Status)
	require.NotNil(t, body.Error)
	assert.Equal(t, reason, *body.Error)
}

func TestGetAudit(t *testing.T) {
	audits := &fakeAudits{runs: map[string]domain.AuditRun{
		"audit-1": {ID: "audit-1", URL: "https://example.com", Status: domain.StatusRunning},
	}}
	h := newTestServer(audits, &fakeReports{}, &fakeJobRepo{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audits/audit-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body auditResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "audit-1", body.ID)
	assert.Equal(t, domain.StatusRunning, body.Status)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audits/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReport(t *testing.T) {
	rep := &fakeReports{report: domain.Report{
		AuditRunRef:   "audit-1",
		LMS:           91.0,
		BadgeEligible: true,
		Result:        []byte(`{"lms":91}`),
	}}
	h := newTestServer(&fakeAudits{}, rep, &fakeJobRepo{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body reportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "audit-1", body.AuditRunID)
	assert.Equal(t, 91.0, body.LMS)
	assert.True(t, body.BadgeEligible)
}

func TestGetReportNotFound(t *testing.T) {
	h := newTestServer(&fakeAudits{}, &fakeReports{err: reports.ErrNotFound}, &fakeJobRepo{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/unknown.example", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
