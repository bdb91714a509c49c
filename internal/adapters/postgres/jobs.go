package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"launchaudit/internal/ports"
)

// ClaimNext selects the next queued job using SKIP LOCKED and marks it and
// its audit run running.
func (db *DB) ClaimNext(ctx context.Context) (job ports.AuditJob, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
        SELECT id, audit_id FROM audit_jobs
        WHERE status = 'queued'
        ORDER BY queued_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `).Scan(&job.ID, &job.AuditID)
	if errors.Is(err, pgx.ErrNoRows) {
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	if _, err = tx.Exec(ctx, `
        UPDATE audit_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
    `, job.ID); err != nil {
		return job, false, err
	}
	if _, err = tx.Exec(ctx, `
        UPDATE audit_runs SET status='running', started_at=COALESCE(started_at, now()) WHERE id=$1
    `, job.AuditID); err != nil {
		return job, false, err
	}
	return job, true, nil
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var auditID string
	if err = tx.QueryRow(ctx, `SELECT audit_id FROM audit_jobs WHERE id=$1`, jobID).Scan(&auditID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE audit_jobs SET status='completed', finished_at=now() WHERE id=$1`, jobID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE audit_runs SET status='completed', finished_at=now() WHERE id=$1`, auditID); err != nil {
		return err
	}
	return nil
}

// MarkFailed records the failure reason verbatim on the audit run.
func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var auditID string
	if err = tx.QueryRow(ctx, `SELECT audit_id FROM audit_jobs WHERE id=$1`, jobID).Scan(&auditID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE audit_jobs SET status='failed', finished_at=now() WHERE id=$1`, jobID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE audit_runs SET status='failed', error=$2, finished_at=now() WHERE id=$1`, auditID, reason); err != nil {
		return err
	}
	return nil
}

// StartJobForAudit marks the queued job for a specific audit as running and
// returns the job id. Used by the inline (blocking) processing path.
func (db *DB) StartJobForAudit(ctx context.Context, auditID string) (string, error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var jobID string
	err = tx.QueryRow(ctx, `
        SELECT id FROM audit_jobs
        WHERE audit_id = $1 AND status = 'queued'
        FOR UPDATE SKIP LOCKED
    `, auditID).Scan(&jobID)
	if err != nil {
		return "", err
	}
	if _, err = tx.Exec(ctx, `UPDATE audit_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1`, jobID); err != nil {
		return "", err
	}
	if _, err = tx.Exec(ctx, `UPDATE audit_runs SET status='running', started_at=COALESCE(started_at, now()) WHERE id=$1`, auditID); err != nil {
		return "", err
	}
	return jobID, nil
}
