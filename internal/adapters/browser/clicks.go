package browser

import (
	"strings"

	"github.com/chromedp/chromedp"
)

// Click simulation for the clicks-to-pay check. This is a best-effort
// heuristic: candidate CTAs are found by text pattern and a short selector
// list, and on unfamiliar sites the wrong element may be clicked. That is
// accepted: the check answers "can a visitor plausibly reach payment in two
// taps", not "what is the true checkout funnel".

// clickCTAJS clicks the first primary call-to-action candidate: a button or
// link whose text matches a buy pattern, falling back to common CTA
// selectors. Returns true if something was clicked.
const clickCTAJS = `(() => {
	const pattern = /\b(buy|get started|try|purchase)\b/i;
	for (const el of document.querySelectorAll('button, a')) {
		if (pattern.test((el.textContent || '').trim())) { el.click(); return true; }
	}
	for (const sel of ['[data-testid*="cta"]', '.cta-button', '#cta']) {
		const el = document.querySelector(sel);
		if (el) { el.click(); return true; }
	}
	return false;
})()`

// clickContinueJS clicks a checkout-progression control after the first CTA
// click did not land on a payment context.
const clickContinueJS = `(() => {
	const pattern = /\b(continue|next|checkout)\b/i;
	for (const el of document.querySelectorAll('button')) {
		if (pattern.test((el.textContent || '').trim())) { el.click(); return true; }
	}
	return false;
})()`

// clicksToPay simulates tapping the primary CTA and reports how many clicks
// it took to reach a payment context: 1 or 2, or nil when no payment context
// was detected within two clicks ("too many / unknown", never zero).
func (p *page) clicksToPay() *int {
	if !p.click(clickCTAJS) {
		return nil
	}
	clicks := 1
	if p.inPaymentContext() {
		return &clicks
	}

	if p.click(clickContinueJS) {
		clicks = 2
		if p.inPaymentContext() {
			return &clicks
		}
	}
	return nil
}

// click evaluates a click snippet and waits for the page to react.
func (p *page) click(js string) bool {
	if !p.evalBool(js) {
		return false
	}
	// The click may trigger navigation; give the new page a moment.
	_ = chromedp.Run(p.ctx, chromedp.Sleep(clickSettle))
	return true
}

func (p *page) inPaymentContext() bool {
	return paymentContext(p.location(), strings.ToLower(p.visibleText()))
}
