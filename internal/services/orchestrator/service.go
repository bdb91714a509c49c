// Package orchestrator fans out the three metric sources for one audit and
// hands their combined snapshot to the scoring engine. It owns no state and
// no adapter-specific error logic: every source catches its own failures and
// always resolves, so the join point cannot fail once credentials are known
// to be present.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"launchaudit/internal/domain"
	"launchaudit/internal/ports"
	"launchaudit/internal/scoring"
)

// ErrMissingCredential means an adapter API key is absent from the
// deployment configuration. This is the only failure RunFullAudit itself
// raises; it is checked before any source is invoked so operators see a
// configuration problem, not a degraded audit.
var ErrMissingCredential = errors.New("missing API credential")

// Credentials holds the API keys the metric sources require.
type Credentials struct {
	LabKey   string // lab performance API
	FieldKey string // field metrics API
}

type Service struct {
	lab     ports.LabPerformanceSource
	field   ports.FieldMetricsSource
	browser ports.BrowserCheckSource
	creds   Credentials
}

func New(lab ports.LabPerformanceSource, field ports.FieldMetricsSource, browser ports.BrowserCheckSource, creds Credentials) *Service {
	return &Service{lab: lab, field: field, browser: browser, creds: creds}
}

// RunFullAudit collects from all three sources concurrently, waits for every
// branch to settle, and computes the scores. Source failures surface as
// error-flagged sub-records inside the snapshot and lower the scores; they
// never fail the audit. There is no cross-source cancellation; each source
// bounds its own latency.
func (s *Service) RunFullAudit(ctx context.Context, url string) (*scoring.Result, error) {
	if s.creds.LabKey == "" {
		return nil, fmt.Errorf("lab performance: %w", ErrMissingCredential)
	}
	if s.creds.FieldKey == "" {
		return nil, fmt.Errorf("field metrics: %w", ErrMissingCredential)
	}

	slog.Info("audit started", "url", url)
	start := time.Now()

	snap := domain.MetricSnapshot{URL: url}
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		snap.Lab = s.lab.Fetch(ctx, url, s.creds.LabKey)
	}()
	go func() {
		defer wg.Done()
		snap.Field = s.field.Fetch(ctx, url, s.creds.FieldKey)
	}()
	go func() {
		defer wg.Done()
		snap.Browser = s.browser.Run(ctx, url)
	}()
	wg.Wait()

	result := scoring.Compute(snap, time.Now().UTC())
	slog.Info("audit complete",
		"url", url,
		"lms", result.LMS,
		"rri", result.RRI,
		"pmi", result.PMI,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &result, nil
}
