package browser

import (
	"regexp"
	"strings"
)

// Keyword heuristics over the page's visible text. These are deliberately
// shallow substring matches, not semantic analysis; callers pass text
// already lowercased.

var guestCheckoutPhrases = []string{
	"guest checkout",
	"continue as guest",
	"checkout without account",
	"skip registration",
}

var previewPhrases = []string{
	"preview",
	"demo",
	"try it",
	"sample",
	"free trial",
}

var gatedContentPhrases = []string{
	"unlock",
	"upgrade to download",
	"premium",
	"pro version",
	"full access",
}

var socialProofPhrases = []string{
	"testimonial",
	"review",
	"customer",
	"trusted by",
	"used by",
}

var paymentIndicators = []string{
	"stripe",
	"checkout",
	"payment",
	"cart",
	"/pay",
	"paypal",
	"apple pay",
	"google pay",
}

var refundPolicyRe = regexp.MustCompile(`refund policy|money.back guarantee|30.day refund`)

func hasGuestCheckout(text string) bool {
	return containsAny(text, guestCheckoutPhrases)
}

func hasPreview(text string) bool {
	return containsAny(text, previewPhrases)
}

func hasGatedContent(text string) bool {
	return containsAny(text, gatedContentPhrases)
}

func hasSocialProof(text string) bool {
	return containsAny(text, socialProofPhrases)
}

func hasRefundPolicyText(text string) bool {
	return refundPolicyRe.MatchString(text)
}

// paymentContext reports whether the current URL or page text looks like a
// payment step.
func paymentContext(currentURL, text string) bool {
	currentURL = strings.ToLower(currentURL)
	for _, ind := range paymentIndicators {
		if strings.Contains(currentURL, ind) || strings.Contains(text, ind) {
			return true
		}
	}
	return false
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// tapTargetsPass applies the sampling rule: at least one measurable target
// and under 20% of the sample smaller than the 24px minimum.
func tapTargetsPass(total, failed int) bool {
	return total > 0 && float64(failed)/float64(total) < 0.2
}
