// Package scoring computes the Launch Money Score (LMS), Revenue Readiness
// Index (RRI) and Popularity Momentum Index (PMI) from a collected metric
// snapshot. The engine is a pure function: no I/O, no hidden clock.
package scoring

// CategoryKey identifies one of the 8 weighted check categories.
type CategoryKey string

const (
	CategoryA CategoryKey = "A" // Frictionless Flow
	CategoryB CategoryKey = "B" // Proof→Pay
	CategoryC CategoryKey = "C" // Transparent Pricing
	CategoryD CategoryKey = "D" // Trust Stack
	CategoryE CategoryKey = "E" // Traffic Readiness
	CategoryF CategoryKey = "F" // Performance
	CategoryG CategoryKey = "G" // Lifecycle & Recovery
	CategoryH CategoryKey = "H" // Analytics & Iteration
)

// Categories is the fixed evaluation and reporting order.
var Categories = []CategoryKey{
	CategoryA, CategoryB, CategoryC, CategoryD,
	CategoryE, CategoryF, CategoryG, CategoryH,
}

// Source declares where a check's signal comes from. Checks with
// SourceAssumed or SourceManual have no detection logic yet: assumed checks
// pass unconditionally, manual checks fail unconditionally until an external
// signal integration lands. Declaring this here keeps the cap on categories
// G and H a visible decision instead of a buried constant.
type Source int

const (
	SourceBrowser Source = iota // headless browser session
	SourceLab                   // lab performance API
	SourceDerived               // derived from other checks
	SourceAssumed               // no detection yet, assumed passing
	SourceManual                // no detection yet, requires manual verification
)

// CheckDef is one named boolean check in a category's ordered catalog.
type CheckDef struct {
	Name   string
	Source Source
}

// Thresholds are the numeric cutoffs used by check and gate evaluation.
// Missing metric values (nil) never pass a threshold comparison: unknown data
// fails closed rather than scoring neutral.
type Thresholds struct {
	LCPGoodSeconds float64
	LCPPoorSeconds float64
	INPGoodMillis  float64
	INPPoorMillis  float64
	CLSGood        float64
	CLSPoor        float64

	// Minimum tap target dimension in CSS pixels (WCAG 2.2), and the
	// iOS HIG / Material recommended size.
	TapTargetMinPx   float64
	TapTargetBonusPx float64

	// Minimum lab accessibility score for the basic_a11y check.
	A11yMinScore float64

	// LMS at or above this earns the badge.
	BadgeLMS float64
}

// Spec is the static scoring specification: category weights, ordered check
// catalogs, gates and thresholds. Loaded once at startup, never mutated.
type Spec struct {
	Version    string
	Weights    map[CategoryKey]float64
	Checks     map[CategoryKey][]CheckDef
	Gates      []string
	Thresholds Thresholds
}

// Gate names. Gates are binary must-pass signals independent of the
// composite scores.
const (
	GatePaymentsOnMobile    = "payments_on_mobile"
	GateHasPreview          = "has_preview"
	GateLCPUnder4s          = "lcp_<4s"
	GateRefundPolicyVisible = "refund_policy_visible"
	GateEventsWired         = "events_wired"
)

// Default is the v1.0 scoring specification. Weights sum to 100.
var Default = Spec{
	Version: "1.0",
	Weights: map[CategoryKey]float64{
		CategoryA: 20,
		CategoryB: 15,
		CategoryC: 10,
		CategoryD: 10,
		CategoryE: 20,
		CategoryF: 10,
		CategoryG: 10,
		CategoryH: 5,
	},
	Checks: map[CategoryKey][]CheckDef{
		CategoryA: {
			{Name: "one_page_flow", Source: SourceBrowser},
			{Name: "guest_checkout", Source: SourceBrowser},
			{Name: "wallets_visible", Source: SourceBrowser},
			{Name: "single_cta_above_fold", Source: SourceBrowser},
			{Name: "<=2_clicks_to_payment", Source: SourceBrowser},
		},
		CategoryB: {
			{Name: "free_preview", Source: SourceBrowser},
			{Name: "full_artifact_gated", Source: SourceBrowser},
			{Name: "watermarked_preview", Source: SourceDerived},
			{Name: "t2preview_<=10s", Source: SourceDerived},
		},
		CategoryC: {
			{Name: "price_<=49", Source: SourceAssumed},
			{Name: "refund_policy_visible", Source: SourceBrowser},
			{Name: "timeboxed_promo", Source: SourceManual},
			{Name: "transparent_pricing_page", Source: SourceAssumed},
		},
		CategoryD: {
			{Name: "social_proof", Source: SourceBrowser},
			{Name: "plain_privacy_tos", Source: SourceBrowser},
			{Name: "fast_support_channel", Source: SourceManual},
			{Name: "real_contact", Source: SourceManual},
			{Name: "basic_a11y", Source: SourceLab},
		},
		CategoryE: {
			{Name: "3_bofu_pages", Source: SourceManual},
			{Name: "bofu_search_ads_live", Source: SourceManual},
			{Name: "niche_community_plan", Source: SourceManual},
			{Name: "marketplace_listing", Source: SourceManual},
			{Name: "email_capture", Source: SourceBrowser},
			{Name: "schema_present", Source: SourceBrowser},
		},
		CategoryF: {
			{Name: "lcp_<2.5s", Source: SourceLab},
			{Name: "inp_<200ms", Source: SourceLab},
			{Name: "cls_<0.1", Source: SourceLab},
			{Name: "tap_target_min", Source: SourceBrowser},
			{Name: "mobile_friendly", Source: SourceBrowser},
		},
		CategoryG: {
			{Name: "abandon_cart_emails", Source: SourceManual},
			{Name: "referral_credit", Source: SourceManual},
			{Name: "retargeting_pixel", Source: SourceManual},
			{Name: "onboarding_emails", Source: SourceManual},
		},
		CategoryH: {
			{Name: "events_wired", Source: SourceManual},
			{Name: "ab_harness", Source: SourceManual},
			{Name: "kpi_dashboard", Source: SourceManual},
			{Name: "error_monitoring", Source: SourceManual},
		},
	},
	Gates: []string{
		GatePaymentsOnMobile,
		GateHasPreview,
		GateLCPUnder4s,
		GateRefundPolicyVisible,
		GateEventsWired,
	},
	Thresholds: Thresholds{
		LCPGoodSeconds:   2.5,
		LCPPoorSeconds:   4.0,
		INPGoodMillis:    200,
		INPPoorMillis:    500,
		CLSGood:          0.1,
		CLSPoor:          0.25,
		TapTargetMinPx:   24,
		TapTargetBonusPx: 44,
		A11yMinScore:     80,
		BadgeLMS:         85,
	},
}
