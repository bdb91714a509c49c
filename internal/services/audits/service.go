package audits

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/net/publicsuffix"

	"launchaudit/internal/domain"
	"launchaudit/internal/ports"
)

// Service enqueues audit runs and exposes their state.
type Service struct {
	domains ports.DomainRepository
	runs    ports.AuditRepository
}

func New(domains ports.DomainRepository, runs ports.AuditRepository) *Service {
	return &Service{domains: domains, runs: runs}
}

// Enqueue records a pending audit run for rawurl under its registrable
// domain (eTLD+1).
func (s *Service) Enqueue(ctx context.Context, rawurl string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	host := u.Hostname()
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		registrable = host
	}
	domainID, err := s.domains.GetOrCreate(ctx, registrable)
	if err != nil {
		return "", err
	}
	return s.runs.Create(ctx, domainID, rawurl)
}

func (s *Service) Get(ctx context.Context, auditID string) (domain.AuditRun, error) {
	return s.runs.Get(ctx, auditID)
}
