package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"
)

// page wraps one loaded session. Every method is best-effort: evaluation
// failures default to the zero value so a single broken check cannot take
// down the suite.
type page struct {
	ctx context.Context
}

func (p *page) eval(js string, out any) error {
	return chromedp.Run(p.ctx, chromedp.Evaluate(js, out))
}

func (p *page) evalBool(js string) bool {
	var v bool
	if err := p.eval(js, &v); err != nil {
		return false
	}
	return v
}

// visibleText returns the page's full visible text, empty on failure.
func (p *page) visibleText() string {
	var s string
	if err := chromedp.Run(p.ctx, chromedp.Text("body", &s, chromedp.ByQuery)); err != nil {
		return ""
	}
	return s
}

func (p *page) location() string {
	var s string
	if err := chromedp.Run(p.ctx, chromedp.Location(&s)); err != nil {
		return ""
	}
	return s
}

var refundSelectors = []string{
	`[href*="refund"]`,
	`[href*="money-back"]`,
}

var legalSelectors = []string{
	`a[href*="privacy"]`,
	`a[href*="terms"]`,
}

var walletSelectors = []string{
	`[aria-label*="Apple Pay"]`,
	`[aria-label*="Google Pay"]`,
	`.apple-pay-button`,
	`.google-pay-button`,
	`[data-testid*="apple-pay"]`,
	`[data-testid*="google-pay"]`,
}

// anySelectorPresent reports whether any selector matches a rendered
// element (display:none elements have no offsetParent and do not count).
func (p *page) anySelectorPresent(selectors []string) bool {
	js := fmt.Sprintf(`(() => {
		const sels = %s;
		for (const sel of sels) {
			const el = document.querySelector(sel);
			if (el && (el.offsetParent !== null || el.getClientRects().length > 0)) return true;
		}
		return false;
	})()`, mustJSON(selectors))
	return p.evalBool(js)
}

// walletsVisible looks for Apple Pay / Google Pay buttons by selector or
// button text, then falls back to Payment Request API support as a weaker
// signal.
func (p *page) walletsVisible() bool {
	js := fmt.Sprintf(`(() => {
		const sels = %s;
		for (const sel of sels) {
			const el = document.querySelector(sel);
			if (el && (el.offsetParent !== null || el.getClientRects().length > 0)) return true;
		}
		for (const el of document.querySelectorAll('button')) {
			if (/apple pay|google pay/i.test(el.textContent || '')) return true;
		}
		return typeof window.PaymentRequest !== 'undefined';
	})()`, mustJSON(walletSelectors))
	return p.evalBool(js)
}

// ctaCountAboveFold counts buy/signup CTAs positioned within the first
// viewport height.
func (p *page) ctaCountAboveFold() int {
	js := fmt.Sprintf(`(() => {
		const els = document.querySelectorAll('button, a[href*="buy"], a[href*="get-started"], a[href*="try"]');
		let count = 0;
		for (const el of els) {
			const box = el.getBoundingClientRect();
			if (box.top < %d && /buy|get started|try|purchase|sign up/i.test(el.textContent || '')) {
				count++;
			}
		}
		return count;
	})()`, viewportHeight)
	var count int
	if err := p.eval(js, &count); err != nil {
		return 0
	}
	return count
}

// tapTargetSample measures the bounding boxes of up to the first 20
// interactive elements and counts those under the 24px minimum in either
// dimension.
func (p *page) tapTargetSample() (total, failed int) {
	js := `(() => {
		const els = Array.from(document.querySelectorAll('button, a')).slice(0, 20);
		let total = 0, failed = 0;
		for (const el of els) {
			const box = el.getBoundingClientRect();
			if (box.width === 0 && box.height === 0) continue;
			total++;
			if (box.width < 24 || box.height < 24) failed++;
		}
		return {total, failed};
	})()`
	var sample struct {
		Total  int `json:"total"`
		Failed int `json:"failed"`
	}
	if err := p.eval(js, &sample); err != nil {
		return 0, 0
	}
	return sample.Total, sample.Failed
}

// mobileResponsive requires a viewport meta tag and no horizontal overflow.
func (p *page) mobileResponsive() bool {
	return p.evalBool(`(() => {
		const meta = document.querySelector('meta[name="viewport"]') !== null;
		const overflow = document.body.scrollWidth > window.innerWidth;
		return meta && !overflow;
	})()`)
}

func (p *page) schemaPresent() bool {
	return p.evalBool(`document.querySelectorAll('script[type="application/ld+json"]').length > 0`)
}

func (p *page) emailCapturePresent() bool {
	return p.evalBool(`document.querySelectorAll('input[type="email"]').length > 0`)
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err) // static selector lists only
	}
	return string(b)
}
