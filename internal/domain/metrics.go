package domain

// MetricSnapshot is the combined output of one data-collection fan-out.
// Each sub-record is independently nullable and error-flagged: a failure in
// one source never blocks scoring from the other two. Nil pointer fields mean
// "unknown", which the scoring engine treats as failing (fail-closed), never
// as zero.
type MetricSnapshot struct {
	URL     string
	Lab     LabPerformance
	Field   FieldMetrics
	Browser BrowserChecks
}

// LabPerformance holds synthetic page-load metrics from a controlled test
// run. LCP is in seconds, INP in milliseconds, CLS unitless. Category scores
// are 0-100. Error is set when the fetch failed; all metric fields are then
// nil.
type LabPerformance struct {
	LCP                *float64
	INP                *float64
	CLS                *float64
	PerformanceScore   *float64
	AccessibilityScore *float64
	BestPracticesScore *float64
	SEOScore           *float64
	Opportunities      []Opportunity
	Error              string
}

// Opportunity is one improvement suggestion from the lab run. Informational
// only; not scored.
type Opportunity struct {
	Title       string
	Description string
	Savings     string
}

// FieldMetrics holds aggregated real-user metrics for a URL or its origin.
// Eligible is false when no population-level data exists for either, an
// expected outcome for low-traffic sites, carried in Error as a
// human-readable reason rather than a transport failure.
type FieldMetrics struct {
	LCP      MetricSummary
	INP      MetricSummary
	CLS      MetricSummary
	Eligible bool
	Error    string
}

// MetricSummary is the p75 value and three-bucket density histogram for one
// field metric. A nil bucket means the density is unknown, not zero.
type MetricSummary struct {
	P75              *float64
	Good             *float64
	NeedsImprovement *float64
	Poor             *float64
}

// BrowserChecks is the result of one headless mobile browsing session.
// ClicksToPay is nil when no payment context was reached within two clicks.
// Error is set when the session itself failed; every boolean is then false.
type BrowserChecks struct {
	ClicksToPay         *int
	GuestCheckout       bool
	WalletsVisible      bool
	SingleCTAAboveFold  bool
	PreviewPresent      bool
	PreviewGated        bool
	RefundPolicyVisible bool
	PrivacyTOSVisible   bool
	SocialProofPresent  bool
	TapTargetsPassed    bool
	MobileResponsive    bool
	SchemaPresent       bool
	EmailCapturePresent bool
	Error               string
}
