package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"launchaudit/internal/domain"
)

// CategoryScore is one category's evaluated result. Score is clamped to
// [0, MaxScore] and rounded to one decimal.
type CategoryScore struct {
	Category CategoryKey     `json:"category"`
	Score    float64         `json:"score"`
	MaxScore float64         `json:"maxScore"`
	Checks   map[string]bool `json:"checks"`
	Evidence []string        `json:"evidence"`
}

// Result is the complete output of one score computation. LMS is the sum of
// category scores; RRI and PMI are weighted blends of four categories each.
// All three are rounded to one decimal at the end, not per term.
type Result struct {
	LMS        float64                       `json:"lms"`
	RRI        float64                       `json:"rri"`
	PMI        float64                       `json:"pmi"`
	Categories map[CategoryKey]CategoryScore `json:"categories"`
	Gates      map[string]bool               `json:"gates"`
	TopFixes   []string                      `json:"topFixes"`
	Timestamp  time.Time                     `json:"timestamp"`
}

// Compute evaluates the full scoring specification against a metric
// snapshot. It is deterministic given its input: now is passed in rather
// than read from the clock, and any well-formed snapshot (including one
// where every source failed) produces a complete Result, never an error.
// Missing values fail their checks; they do not abort scoring.
func Compute(snap domain.MetricSnapshot, now time.Time) Result {
	categories := map[CategoryKey]CategoryScore{
		CategoryA: computeCategoryA(snap),
		CategoryB: computeCategoryB(snap),
		CategoryC: computeCategoryC(snap),
		CategoryD: computeCategoryD(snap),
		CategoryE: computeCategoryE(snap),
		CategoryF: computeCategoryF(snap),
		CategoryG: computeCategoryG(snap),
		CategoryH: computeCategoryH(snap),
	}

	var lms float64
	for _, key := range Categories {
		lms += categories[key].Score
	}

	// RRI = 100*(0.35*A/20 + 0.25*B/15 + 0.20*C/10 + 0.20*G/10)
	rri := 100 * (0.35*categories[CategoryA].Score/Default.Weights[CategoryA] +
		0.25*categories[CategoryB].Score/Default.Weights[CategoryB] +
		0.20*categories[CategoryC].Score/Default.Weights[CategoryC] +
		0.20*categories[CategoryG].Score/Default.Weights[CategoryG])

	// PMI = 100*(0.40*E/20 + 0.25*F/10 + 0.20*D/10 + 0.15*H/5)
	pmi := 100 * (0.40*categories[CategoryE].Score/Default.Weights[CategoryE] +
		0.25*categories[CategoryF].Score/Default.Weights[CategoryF] +
		0.20*categories[CategoryD].Score/Default.Weights[CategoryD] +
		0.15*categories[CategoryH].Score/Default.Weights[CategoryH])

	gates := evaluateGates(snap, categories)

	return Result{
		LMS:        round1(lms),
		RRI:        round1(rri),
		PMI:        round1(pmi),
		Categories: categories,
		Gates:      gates,
		TopFixes:   topFixes(categories, gates),
		Timestamp:  now,
	}
}

// scoreCategory turns ordered check outcomes into a CategoryScore.
// outcomes must align with the category's check catalog.
func scoreCategory(key CategoryKey, outcomes []bool, evidence []string) CategoryScore {
	defs := Default.Checks[key]
	maxScore := Default.Weights[key]
	checksPerPoint := float64(len(defs)) / maxScore

	checks := make(map[string]bool, len(defs))
	passed := 0
	for i, def := range defs {
		checks[def.Name] = outcomes[i]
		if outcomes[i] {
			passed++
		}
	}

	score := round1(float64(passed) / checksPerPoint)
	if score > maxScore {
		score = maxScore
	}

	return CategoryScore{
		Category: key,
		Score:    score,
		MaxScore: maxScore,
		Checks:   checks,
		Evidence: evidence,
	}
}

func computeCategoryA(snap domain.MetricSnapshot) CategoryScore {
	b := snap.Browser
	guest := b.GuestCheckout
	wallets := b.WalletsVisible
	singleCTA := b.SingleCTAAboveFold

	return scoreCategory(CategoryA, []bool{
		clicksAtMost(b.ClicksToPay, 1), // one_page_flow
		guest,                          // guest_checkout
		wallets,                        // wallets_visible
		singleCTA,                      // single_cta_above_fold
		clicksAtMost(b.ClicksToPay, 2), // <=2_clicks_to_payment
	}, []string{
		"Clicks to payment: " + formatClicks(b.ClicksToPay),
		"Guest checkout: " + label(guest, "Available", "Not found"),
		"Wallets visible: " + yesNo(wallets),
		"Single CTA above fold: " + yesNo(singleCTA),
	})
}

func computeCategoryB(snap domain.MetricSnapshot) CategoryScore {
	b := snap.Browser

	return scoreCategory(CategoryB, []bool{
		b.PreviewPresent,                  // free_preview
		b.PreviewGated,                    // full_artifact_gated
		b.PreviewPresent && b.PreviewGated, // watermarked_preview
		b.PreviewPresent,                  // t2preview_<=10s: assumed fast when present
	}, []string{
		"Preview present: " + yesNo(b.PreviewPresent),
		"Gated content: " + yesNo(b.PreviewGated),
	})
}

func computeCategoryC(snap domain.MetricSnapshot) CategoryScore {
	b := snap.Browser

	return scoreCategory(CategoryC, []bool{
		true,                  // price_<=49: assumed, no price extraction yet
		b.RefundPolicyVisible, // refund_policy_visible
		false,                 // timeboxed_promo: requires manual verification
		true,                  // transparent_pricing_page: assumed
	}, []string{
		"Refund policy visible: " + yesNo(b.RefundPolicyVisible),
		"Transparent pricing: Yes",
	})
}

func computeCategoryD(snap domain.MetricSnapshot) CategoryScore {
	b := snap.Browser
	a11y := atLeast(snap.Lab.AccessibilityScore, Default.Thresholds.A11yMinScore)

	return scoreCategory(CategoryD, []bool{
		b.SocialProofPresent, // social_proof
		b.PrivacyTOSVisible,  // plain_privacy_tos
		false,                // fast_support_channel: requires manual verification
		false,                // real_contact: requires manual verification
		a11y,                 // basic_a11y
	}, []string{
		"Social proof: " + label(b.SocialProofPresent, "Present", "Missing"),
		"Privacy/ToS visible: " + yesNo(b.PrivacyTOSVisible),
		"Accessibility score: " + formatScore(snap.Lab.AccessibilityScore),
	})
}

func computeCategoryE(snap domain.MetricSnapshot) CategoryScore {
	b := snap.Browser

	return scoreCategory(CategoryE, []bool{
		false,                 // 3_bofu_pages: requires crawling
		false,                 // bofu_search_ads_live: requires external check
		false,                 // niche_community_plan: requires manual verification
		false,                 // marketplace_listing: requires manual verification
		b.EmailCapturePresent, // email_capture
		b.SchemaPresent,       // schema_present
	}, []string{
		"Email capture: " + label(b.EmailCapturePresent, "Present", "Missing"),
		"Schema markup: " + label(b.SchemaPresent, "Present", "Missing"),
	})
}

func computeCategoryF(snap domain.MetricSnapshot) CategoryScore {
	lab := snap.Lab
	b := snap.Browser
	th := Default.Thresholds

	return scoreCategory(CategoryF, []bool{
		lessThan(lab.LCP, th.LCPGoodSeconds), // lcp_<2.5s
		lessThan(lab.INP, th.INPGoodMillis),  // inp_<200ms
		lessThan(lab.CLS, th.CLSGood),        // cls_<0.1
		b.TapTargetsPassed,                   // tap_target_min
		b.MobileResponsive,                   // mobile_friendly
	}, []string{
		"LCP: " + formatSeconds(lab.LCP),
		"INP: " + formatMillis(lab.INP),
		"CLS: " + formatCLS(lab.CLS),
		"Tap targets: " + label(b.TapTargetsPassed, "Passed", "Failed"),
		"Mobile responsive: " + yesNo(b.MobileResponsive),
	})
}

func computeCategoryG(snap domain.MetricSnapshot) CategoryScore {
	// Every lifecycle check is SourceManual: no signal integration yet.
	return scoreCategory(CategoryG, []bool{false, false, false, false}, []string{
		"Lifecycle checks require manual verification or snippet integration",
	})
}

func computeCategoryH(snap domain.MetricSnapshot) CategoryScore {
	// Every analytics check is SourceManual: no signal integration yet.
	return scoreCategory(CategoryH, []bool{false, false, false, false}, []string{
		"Analytics checks require manual verification or snippet integration",
	})
}

func evaluateGates(snap domain.MetricSnapshot, categories map[CategoryKey]CategoryScore) map[string]bool {
	b := snap.Browser
	return map[string]bool{
		GatePaymentsOnMobile:    b.WalletsVisible || clicksAtMost(b.ClicksToPay, 3),
		GateHasPreview:          b.PreviewPresent,
		GateLCPUnder4s:          lessThan(snap.Lab.LCP, Default.Thresholds.LCPPoorSeconds),
		GateRefundPolicyVisible: b.RefundPolicyVisible,
		GateEventsWired:         categories[CategoryH].Checks["events_wired"],
	}
}

// topFixes builds the prioritized fix list: failed gates first, then a fixed
// set of category-check failures. Ties within a priority keep declaration
// order. At most five fixes are returned.
func topFixes(categories map[CategoryKey]CategoryScore, gates map[string]bool) []string {
	type fix struct {
		priority int
		text     string
	}
	var fixes []fix

	if !gates[GatePaymentsOnMobile] {
		fixes = append(fixes, fix{1, "Enable mobile payments (Apple Pay / Google Pay)"})
	}
	if !gates[GateHasPreview] {
		fixes = append(fixes, fix{1, "Add a free preview or demo of your product"})
	}
	if !gates[GateLCPUnder4s] {
		fixes = append(fixes, fix{1, "Improve page load speed (LCP > 4s is critical)"})
	}
	if !gates[GateRefundPolicyVisible] {
		fixes = append(fixes, fix{1, "Display refund policy prominently"})
	}

	if !categories[CategoryA].Checks["wallets_visible"] {
		fixes = append(fixes, fix{2, "Add wallet buttons (Apple Pay / Google Pay) to checkout"})
	}
	if !categories[CategoryA].Checks["guest_checkout"] {
		fixes = append(fixes, fix{2, "Enable guest checkout (no account required)"})
	}
	if !categories[CategoryF].Checks["lcp_<2.5s"] {
		fixes = append(fixes, fix{2, "Optimize Largest Contentful Paint (target < 2.5s)"})
	}
	if !categories[CategoryF].Checks["inp_<200ms"] {
		fixes = append(fixes, fix{2, "Improve Interaction to Next Paint (target < 200ms)"})
	}
	if !categories[CategoryD].Checks["social_proof"] {
		fixes = append(fixes, fix{3, "Add testimonials or customer logos"})
	}
	if !categories[CategoryE].Checks["schema_present"] {
		fixes = append(fixes, fix{3, "Add structured data (Schema.org markup)"})
	}

	sort.SliceStable(fixes, func(i, j int) bool { return fixes[i].priority < fixes[j].priority })
	if len(fixes) > 5 {
		fixes = fixes[:5]
	}
	out := make([]string, len(fixes))
	for i, f := range fixes {
		out[i] = f.text
	}
	return out
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// lessThan is the fail-closed threshold comparison: a nil value never
// passes. See Thresholds.
func lessThan(v *float64, limit float64) bool {
	return v != nil && *v < limit
}

// atLeast fails closed on nil, like lessThan.
func atLeast(v *float64, min float64) bool {
	return v != nil && *v >= min
}

// clicksAtMost fails closed on nil: unknown click depth never passes.
func clicksAtMost(clicks *int, max int) bool {
	return clicks != nil && *clicks <= max
}

func yesNo(v bool) string {
	return label(v, "Yes", "No")
}

func label(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

func formatClicks(clicks *int) string {
	if clicks == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%d", *clicks)
}

func formatScore(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.0f", *v)
}

func formatSeconds(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2fs", *v)
}

func formatMillis(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.0fms", *v)
}

func formatCLS(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.3f", *v)
}
