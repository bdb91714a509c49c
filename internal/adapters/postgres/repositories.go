package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"launchaudit/internal/domain"
	"launchaudit/internal/scoring"
)

var ErrNotFound = errString("not found")

type errString string

func (e errString) Error() string { return string(e) }

// DomainRepository

func (db *DB) GetOrCreate(ctx context.Context, registrable string) (string, error) {
	registrable = strings.ToLower(registrable)
	var id string
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO domains (id, registrable_domain)
        VALUES ($1, $2)
        ON CONFLICT (registrable_domain) DO UPDATE SET registrable_domain = EXCLUDED.registrable_domain
        RETURNING id
    `, uuid.NewString(), registrable).Scan(&id)
	return id, err
}

// AuditRepository

func (db *DB) Create(ctx context.Context, domainID string, url string) (string, error) {
	auditID := uuid.NewString()
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO audit_runs (id, domain_id, url, status)
        VALUES ($1, $2, $3, 'pending')
    `, auditID, domainID, url)
	if err != nil {
		return "", err
	}
	_, err = db.Pool.Exec(ctx, `INSERT INTO audit_jobs (id, audit_id) VALUES ($1, $2)`, uuid.NewString(), auditID)
	return auditID, err
}

func (db *DB) Get(ctx context.Context, auditID string) (domain.AuditRun, error) {
	var run domain.AuditRun
	err := db.Pool.QueryRow(ctx, `
        SELECT id, domain_id, url, status, error, lms, rri, pmi, result, created_at, started_at, finished_at
        FROM audit_runs WHERE id = $1
    `, auditID).Scan(&run.ID, &run.DomainRef, &run.URL, &run.Status, &run.Error,
		&run.LMS, &run.RRI, &run.PMI, &run.Result, &run.CreatedAt, &run.StartedAt, &run.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return run, ErrNotFound
	}
	return run, err
}

// SaveResult stores the scoring result on the run and upserts the domain's
// latest report in the same transaction. Run and job status transitions stay
// with the job repository.
func (db *DB) SaveResult(ctx context.Context, auditID string, result *scoring.Result) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

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

	var domainID string
	if err = tx.QueryRow(ctx, `
        UPDATE audit_runs SET lms=$2, rri=$3, pmi=$4, result=$5 WHERE id=$1
        RETURNING domain_id
    `, auditID, result.LMS, result.RRI, result.PMI, encoded).Scan(&domainID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
		}
		return err
	}

	badge := result.LMS >= scoring.Default.Thresholds.BadgeLMS
	_, err = tx.Exec(ctx, `
        INSERT INTO reports (id, domain_id, audit_run_id, lms, rri, pmi, badge_eligible, result, computed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (domain_id) DO UPDATE SET
            audit_run_id = EXCLUDED.audit_run_id,
            lms = EXCLUDED.lms,
            rri = EXCLUDED.rri,
            pmi = EXCLUDED.pmi,
            badge_eligible = EXCLUDED.badge_eligible,
            result = EXCLUDED.result,
            computed_at = EXCLUDED.computed_at
    `, uuid.NewString(), domainID, auditID, result.LMS, result.RRI, result.PMI, badge, encoded, result.Timestamp)
	return err
}

// ReportRepository

func (db *DB) GetLatestByDomain(ctx context.Context, registrable string) (domain.Report, bool, error) {
	var rep domain.Report
	err := db.Pool.QueryRow(ctx, `
        SELECT r.id, r.domain_id, r.audit_run_id, r.lms, r.rri, r.pmi, r.badge_eligible, r.result, r.computed_at
        FROM reports r
        JOIN domains d ON d.id = r.domain_id
        WHERE d.registrable_domain = $1
    `, strings.ToLower(registrable)).Scan(&rep.ID, &rep.DomainRef, &rep.AuditRunRef,
		&rep.LMS, &rep.RRI, &rep.PMI, &rep.BadgeEligible, &rep.Result, &rep.ComputedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return rep, false, nil
	}
	if err != nil {
		return rep, false, err
	}
	return rep, true, nil
}
