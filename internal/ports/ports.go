package ports

import (
	"context"

	"launchaudit/internal/domain"
	"launchaudit/internal/scoring"
)

// Audits enqueues and tracks audit runs.
type Audits interface {
	Enqueue(ctx context.Context, url string) (auditID string, err error)
	Get(ctx context.Context, auditID string) (domain.AuditRun, error)
}

// Reports provides the latest completed audit report for a domain.
type Reports interface {
	GetLatest(ctx context.Context, rawurl string) (domain.Report, error)
}

// AuditRunner runs the full data-collection and scoring pipeline for a URL.
// It returns an error only for configuration problems (missing credentials);
// individual data-source failures degrade into lower scores instead.
type AuditRunner interface {
	RunFullAudit(ctx context.Context, url string) (*scoring.Result, error)
}

// LabPerformanceSource fetches synthetic page-load metrics. The returned
// record carries its own Error field; the call never fails.
type LabPerformanceSource interface {
	Fetch(ctx context.Context, url, apiKey string) domain.LabPerformance
}

// FieldMetricsSource fetches real-user metrics for a URL, falling back to
// origin-level data. Never fails; ineligibility is an expected outcome
// reported inside the record.
type FieldMetricsSource interface {
	Fetch(ctx context.Context, url, apiKey string) domain.FieldMetrics
}

// BrowserCheckSource runs the headless-browser check suite against a URL in
// an isolated session. Never fails; session-level errors produce an
// all-false record with Error set.
type BrowserCheckSource interface {
	Run(ctx context.Context, url string) domain.BrowserChecks
}
