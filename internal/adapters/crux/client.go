// Package crux fetches real-user (field) metrics from the Chrome UX Report
// API. URL-level data is attempted first; on any failure the adapter retries
// at origin level, since many URLs lack enough traffic for page-level
// statistics. When both lookups fail the site is reported as ineligible with
// a human-readable reason; that is an expected outcome, not an error the
// caller should handle.
package crux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"launchaudit/internal/domain"
)

const defaultBaseURL = "https://chromeuxreport.googleapis.com/v1/records:queryRecord"

const fetchTimeout = 30 * time.Second

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

// Fetch returns field metrics for pageURL, falling back to origin-level
// data. It never fails: an ineligible site yields Eligible=false with all
// metrics nil and Error describing why.
func (c *Client) Fetch(ctx context.Context, pageURL, apiKey string) domain.FieldMetrics {
	res, err := c.query(ctx, queryRequest{URL: pageURL, FormFactor: "PHONE"}, apiKey)
	if err == nil {
		return res
	}

	origin, originErr := originOf(pageURL)
	if originErr == nil {
		res, fallbackErr := c.query(ctx, queryRequest{Origin: origin, FormFactor: "PHONE"}, apiKey)
		if fallbackErr == nil {
			return res
		}
		err = fallbackErr
	}

	slog.Info("no field data for url or origin", "url", pageURL, "err", err)
	return domain.FieldMetrics{
		Eligible: false,
		Error:    "field data not available (insufficient traffic)",
	}
}

type queryRequest struct {
	URL        string `json:"url,omitempty"`
	Origin     string `json:"origin,omitempty"`
	FormFactor string `json:"formFactor"`
}

type queryResponse struct {
	Record struct {
		Metrics map[string]cruxMetric `json:"metrics"`
	} `json:"record"`
}

type cruxMetric struct {
	Percentiles struct {
		// P75 is a string for CLS and an integer for the timing metrics.
		P75 json.Number `json:"p75"`
	} `json:"percentiles"`
	Histogram []struct {
		Density *float64 `json:"density"`
	} `json:"histogram"`
}

func (c *Client) query(ctx context.Context, q queryRequest, apiKey string) (domain.FieldMetrics, error) {
	var out domain.FieldMetrics

	payload, err := json.Marshal(q)
	if err != nil {
		return out, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?key="+url.QueryEscape(apiKey), bytes.NewReader(payload))
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return out, fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	if len(body.Record.Metrics) == 0 {
		return out, fmt.Errorf("record has no metrics")
	}

	out.LCP = extractMetric(body.Record.Metrics, "largest_contentful_paint")
	out.INP = extractMetric(body.Record.Metrics, "interaction_to_next_paint")
	out.CLS = extractMetric(body.Record.Metrics, "cumulative_layout_shift")
	out.Eligible = true
	return out, nil
}

// extractMetric pulls the p75 value and the good/needs-improvement/poor
// densities for one metric. Missing buckets stay nil: nil means "unknown",
// not "zero density".
func extractMetric(metrics map[string]cruxMetric, key string) domain.MetricSummary {
	var out domain.MetricSummary
	m, ok := metrics[key]
	if !ok {
		return out
	}

	if p75, err := m.Percentiles.P75.Float64(); err == nil {
		out.P75 = &p75
	}
	if len(m.Histogram) > 0 && m.Histogram[0].Density != nil {
		v := *m.Histogram[0].Density
		out.Good = &v
	}
	if len(m.Histogram) > 1 && m.Histogram[1].Density != nil {
		v := *m.Histogram[1].Density
		out.NeedsImprovement = &v
	}
	if len(m.Histogram) > 2 && m.Histogram[2].Density != nil {
		v := *m.Histogram[2].Density
		out.Poor = &v
	}
	return out
}

func originOf(rawurl string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no origin", rawurl)
	}
	return u.Scheme + "://" + u.Host, nil
}
