// Package pagespeed fetches lab performance data (Lighthouse) from the
// PageSpeed Insights API and normalizes it into a domain.LabPerformance
// record. The adapter never returns an error to callers: transport and parse
// failures become an all-nil record with Error set.
package pagespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"launchaudit/internal/domain"
)

const defaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// fetchTimeout bounds one lab run. Lighthouse runs are slow; the API itself
// can take close to a minute for heavy pages.
const fetchTimeout = 60 * time.Second

// maxOpportunities caps the improvement suggestions kept per run.
const maxOpportunities = 5

type Client struct {
	httpc   *http.Client
	baseURL string
}

func New() *Client {
	return &Client{
		httpc:   &http.Client{Timeout: fetchTimeout},
		baseURL: defaultBaseURL,
	}
}

// NewWithBaseURL is used by tests to point the client at a stub server.
func NewWithBaseURL(base string) *Client {
	c := New()
	c.baseURL = base
	return c
}

// Fetch runs a mobile lab analysis for pageURL. It always returns a usable
// record; on failure every metric is nil and Error holds the reason.
func (c *Client) Fetch(ctx context.Context, pageURL, apiKey string) domain.LabPerformance {
	res, err := c.fetch(ctx, pageURL, apiKey)
	if err != nil {
		slog.Warn("pagespeed fetch failed", "url", pageURL, "err", err)
		return domain.LabPerformance{Error: err.Error()}
	}
	return res
}

func (c *Client) fetch(ctx context.Context, pageURL, apiKey string) (domain.LabPerformance, error) {
	var out domain.LabPerformance

	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("key", apiKey)
	q.Set("strategy", "mobile")
	for _, cat := range []string{"performance", "accessibility", "best-practices", "seo"} {
		q.Add("category", cat)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return out, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body psiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}

	audits := body.LighthouseResult.Audits
	categories := body.LighthouseResult.Categories

	// LCP arrives in milliseconds; the scoring spec works in seconds.
	if v := numericAudit(audits, "largest-contentful-paint"); v != nil {
		lcp := *v / 1000
		out.LCP = &lcp
	}
	out.INP = numericAudit(audits, "interaction-to-next-paint")
	out.CLS = numericAudit(audits, "cumulative-layout-shift")

	out.PerformanceScore = categoryScore(categories, "performance")
	out.AccessibilityScore = categoryScore(categories, "accessibility")
	out.BestPracticesScore = categoryScore(categories, "best-practices")
	out.SEOScore = categoryScore(categories, "seo")

	out.Opportunities = opportunities(audits)
	return out, nil
}

type psiResponse struct {
	LighthouseResult struct {
		Audits     map[string]psiAudit    `json:"audits"`
		Categories map[string]psiCategory `json:"categories"`
	} `json:"lighthouseResult"`
}

type psiAudit struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	DisplayValue string   `json:"displayValue"`
	NumericValue *float64 `json:"numericValue"`
	Details      struct {
		Type string `json:"type"`
	} `json:"details"`
}

type psiCategory struct {
	Score *float64 `json:"score"`
}

func numericAudit(audits map[string]psiAudit, key string) *float64 {
	a, ok := audits[key]
	if !ok || a.NumericValue == nil {
		return nil
	}
	v := *a.NumericValue
	return &v
}

// categoryScore converts the upstream 0-1 score to 0-100, nil if absent.
func categoryScore(categories map[string]psiCategory, key string) *float64 {
	c, ok := categories[key]
	if !ok || c.Score == nil {
		return nil
	}
	v := *c.Score * 100
	return &v
}

// opportunities extracts up to maxOpportunities improvement suggestions in a
// stable (key-sorted) order.
func opportunities(audits map[string]psiAudit) []domain.Opportunity {
	keys := make([]string, 0, len(audits))
	for k, a := range audits {
		if a.Details.Type == "opportunity" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []domain.Opportunity
	for _, k := range keys {
		if len(out) == maxOpportunities {
			break
		}
		a := audits[k]
		title := a.Title
		if title == "" {
			title = k
		}
		out = append(out, domain.Opportunity{
			Title:       title,
			Description: a.Description,
			Savings:     a.DisplayValue,
		})
	}
	return out
}
