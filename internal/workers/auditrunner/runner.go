package auditrunner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"launchaudit/internal/ports"
)

// Processor runs the audit pipeline for a claimed job's audit run and
// persists the outcome. Pipeline errors are returned so callers can mark the
// job failed with the message captured verbatim.
type Processor struct {
	Runs   ports.AuditRepository
	Runner ports.AuditRunner
}

func (p Processor) Process(ctx context.Context, auditID string) error {
	run, err := p.Runs.Get(ctx, auditID)
	if err != nil {
		return fmt.Errorf("load audit %s: %w", auditID, err)
	}
	result, err := p.Runner.RunFullAudit(ctx, run.URL)
	if err != nil {
		return err
	}
	if err := p.Runs.SaveResult(ctx, auditID, result); err != nil {
		return fmt.Errorf("save result for audit %s: %w", auditID, err)
	}
	return nil
}

// AuditProcessor is the contract the workers drive; Processor is the real
// implementation, fakes stand in for tests.
type AuditProcessor interface {
	Process(ctx context.Context, auditID string) error
}

// Run starts worker goroutines that claim queued audit jobs and process
// them until ctx is cancelled.
func Run(ctx context.Context, repo ports.JobRepository, processor AuditProcessor, concurrency int, pollInterval time.Duration) {
	if concurrency < 1 {
		return
	}
	jobsCh := make(chan ports.AuditJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNext(ctx)
					if err != nil {
						slog.Error("job claim failed", "err", err)
						break
					}
					if !found {
						break
					}
					jobsCh <- job
				}
			}
		}
	}()

	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for job := range jobsCh {
				if err := processor.Process(ctx, job.AuditID); err != nil {
					_ = repo.MarkFailed(ctx, job.ID, err.Error())
					slog.Error("audit job failed", "worker", idx, "job", job.ID, "err", err)
					continue
				}
				if err := repo.MarkCompleted(ctx, job.ID); err != nil {
					slog.Error("job completion update failed", "worker", idx, "job", job.ID, "err", err)
				}
			}
		}(i)
	}
}

// ProcessInline starts and processes a specific audit synchronously using
// the same processor logic as the background workers.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor AuditProcessor, auditID string) error {
	jobID, err := repo.StartJobForAudit(ctx, auditID)
	if err != nil {
		return err
	}
	if err := processor.Process(ctx, auditID); err != nil {
		_ = repo.MarkFailed(ctx, jobID, err.Error())
		return err
	}
	return repo.MarkCompleted(ctx, jobID)
}
