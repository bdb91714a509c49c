package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"launchaudit/internal/domain"
	"launchaudit/internal/ports"
)

// cacheTTL keeps repeated report reads off the database for a while;
// concurrent audits of the same domain simply refresh it on completion lag.
const cacheTTL = time.Hour

var ErrNotFound = errString("report not found")

type errString string

func (e errString) Error() string { return string(e) }

// Service serves the latest completed report per registrable domain with a
// cache-aside over the injected store.
type Service struct {
	repo  ports.ReportRepository
	cache ports.Store
}

func New(repo ports.ReportRepository, cache ports.Store) *Service {
	return &Service{repo: repo, cache: cache}
}

// GetLatest accepts either a bare domain or a full URL.
func (s *Service) GetLatest(ctx context.Context, raw string) (domain.Report, error) {
	registrable := normalize(raw)

	key := "report:" + registrable
	if cached, found, err := s.cache.Get(ctx, key); err == nil && found {
		var rep domain.Report
		if err := json.Unmarshal(cached, &rep); err == nil {
			return rep, nil
		}
	}

	rep, found, err := s.repo.GetLatestByDomain(ctx, registrable)
	if err != nil {
		return domain.Report{}, err
	}
	if !found {
		return domain.Report{}, ErrNotFound
	}

	if encoded, err := json.Marshal(rep); err == nil {
		if err := s.cache.Set(ctx, key, encoded, cacheTTL); err != nil {
			slog.Warn("report cache write failed", "domain", registrable, "err", err)
		}
	}
	return rep, nil
}

func normalize(raw string) string {
	host := raw
	if strings.Contains(raw, "/") {
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	}
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return registrable
	}
	return host
}
