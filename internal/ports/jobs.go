package ports

import "context"

type AuditJob struct {
	ID      string
	AuditID string
}

// JobRepository supports claiming and updating audit jobs.
type JobRepository interface {
	ClaimNext(ctx context.Context) (job AuditJob, found bool, err error)
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	StartJobForAudit(ctx context.Context, auditID string) (jobID string, err error)
}
