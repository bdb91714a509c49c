// Package browser runs the headless-browser check suite against a URL using
// a mobile-emulated Chrome session driven over the DevTools protocol. Each
// check is best-effort and recovers independently: one fragile check
// defaulting to false never blanks the other twelve. The session, browser
// process included, is torn down on every exit path.
package browser

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"

	"launchaudit/internal/domain"
)

const (
	// sessionTimeout bounds navigation plus the whole check suite.
	sessionTimeout = 30 * time.Second

	// networkIdleWindow is how long the network must stay quiet after load
	// before checks start.
	networkIdleWindow = 500 * time.Millisecond

	// clickSettle is the wait after a simulated click before inspecting the
	// resulting page.
	clickSettle = 2 * time.Second

	viewportWidth  = 375
	viewportHeight = 667

	mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"
)

// auditDevice is the fixed mobile profile every session emulates.
var auditDevice = device.Info{
	Name:      "audit-mobile",
	UserAgent: mobileUserAgent,
	Width:     viewportWidth,
	Height:    viewportHeight,
	Scale:     2,
	Mobile:    true,
	Touch:     true,
}

type Runner struct {
	timeout   time.Duration
	allocOpts []chromedp.ExecAllocatorOption
}

func New() *Runner {
	return &Runner{
		timeout:   sessionTimeout,
		allocOpts: chromedp.DefaultExecAllocatorOptions[:],
	}
}

// Run navigates to pageURL in an isolated session and evaluates the check
// suite. It never fails: a navigation timeout or browser crash yields an
// all-false record with Error set. The click simulation runs last because it
// mutates page state.
func (r *Runner) Run(ctx context.Context, pageURL string) domain.BrowserChecks {
	var out domain.BrowserChecks

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocOpts...)
	defer cancelAlloc() // terminates the browser process on every path
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	tctx, cancel := context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	if err := navigate(tctx, pageURL); err != nil {
		slog.Warn("browser navigation failed", "url", pageURL, "err", err)
		out.Error = err.Error()
		return out
	}

	p := &page{ctx: tctx}

	// The body text feeds several keyword heuristics; fetch it once.
	// An empty string on failure simply fails those checks.
	text := strings.ToLower(p.visibleText())

	out.GuestCheckout = hasGuestCheckout(text)
	out.PreviewPresent = hasPreview(text)
	out.PreviewGated = hasGatedContent(text)
	out.SocialProofPresent = hasSocialProof(text)
	out.RefundPolicyVisible = p.anySelectorPresent(refundSelectors) || hasRefundPolicyText(text)
	out.PrivacyTOSVisible = p.anySelectorPresent(legalSelectors)
	out.WalletsVisible = p.walletsVisible()
	out.SingleCTAAboveFold = p.ctaCountAboveFold() == 1
	out.TapTargetsPassed = tapTargetsPass(p.tapTargetSample())
	out.MobileResponsive = p.mobileResponsive()
	out.SchemaPresent = p.schemaPresent()
	out.EmailCapturePresent = p.emailCapturePresent()
	out.ClicksToPay = p.clicksToPay()

	return out
}

// navigate loads pageURL and waits for the network to go idle: no request in
// flight and none started for networkIdleWindow. Pages that never settle run
// into the session timeout and are reported as failed navigations.
func navigate(ctx context.Context, pageURL string) error {
	var mu sync.Mutex
	inflight := make(map[network.RequestID]struct{})
	last := time.Now()

	chromedp.ListenTarget(ctx, func(ev any) {
		mu.Lock()
		defer mu.Unlock()
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			inflight[e.RequestID] = struct{}{}
			last = time.Now()
		case *network.EventLoadingFinished:
			delete(inflight, e.RequestID)
			last = time.Now()
		case *network.EventLoadingFailed:
			delete(inflight, e.RequestID)
			last = time.Now()
		}
	})

	err := chromedp.Run(ctx,
		network.Enable(),
		chromedp.Emulate(auditDevice),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			mu.Lock()
			idle := len(inflight) == 0 && time.Since(last) >= networkIdleWindow
			mu.Unlock()
			if idle {
				return nil
			}
		}
	}
}
