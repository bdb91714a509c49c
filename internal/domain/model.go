package domain

import "time"

// Core domain models used internally. API response types live in the HTTP
// adapter; keep these decoupled where helpful.

// Audit run lifecycle states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Domain struct {
	ID                string
	RegistrableDomain string
	FirstSeenAt       time.Time
}

// AuditRun is one execution of the full audit pipeline for a URL.
// Error is set only when Status is failed, verbatim from the failure.
type AuditRun struct {
	ID         string
	DomainRef  string
	URL        string
	Status     string // pending|running|completed|failed
	Error      *string
	LMS        *float64
	RRI        *float64
	PMI        *float64
	Result     []byte // full scoring result, JSON-encoded
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Report is the latest completed audit snapshot for a registrable domain.
type Report struct {
	ID            string
	DomainRef     string
	AuditRunRef   string
	LMS           float64
	RRI           float64
	PMI           float64
	BadgeEligible bool
	Result        []byte
	ComputedAt    time.Time
}
