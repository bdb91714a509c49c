package ports

import (
	"context"

	"launchaudit/internal/domain"
	"launchaudit/internal/scoring"
)

// DomainRepository stores and fetches domains by registrable domain (eTLD+1).
type DomainRepository interface {
	GetOrCreate(ctx context.Context, registrable string) (domainID string, err error)
}

// AuditRepository manages audit run records.
type AuditRepository interface {
	Create(ctx context.Context, domainID string, url string) (auditID string, err error)
	Get(ctx context.Context, auditID string) (domain.AuditRun, error)
	// SaveResult stores a completed scoring result on the run and upserts
	// the domain's latest report in the same transaction.
	SaveResult(ctx context.Context, auditID string, result *scoring.Result) error
}

// ReportRepository provides the latest report per domain.
type ReportRepository interface {
	GetLatestByDomain(ctx context.Context, registrable string) (report domain.Report, found bool, err error)
}
