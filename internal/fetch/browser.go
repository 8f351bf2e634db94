package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"restyle/extract"
)

const (
	browserTimeout   = 30 * time.Second
	networkIdleAfter = 500 * time.Millisecond
	viewportWidth    = 1280
	viewportHeight   = 800
)

// computedCSSJS serializes every stylesheet the page can read into one
// text. Cross-origin sheets whose cssRules throw are skipped.
const computedCSSJS = `(() => {
	const sheets = Array.from(document.styleSheets);
	return sheets
		.filter(sheet => { try { return sheet.cssRules !== null; } catch (e) { return false; } })
		.map(sheet => Array.from(sheet.cssRules).map(rule => rule.cssText).join('\n'))
		.join('\n');
})()`

// Browser drives a shared headless-Chrome allocator. Each Fetch gets its
// own browser context; the allocator is the only long-lived piece.
type Browser struct {
	allocator context.Context
	cancel    context.CancelFunc
	logger    *log.Logger
}

func NewBrowser(logger *log.Logger) (*Browser, error) {
	if logger == nil {
		logger = log.Default()
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Browser{allocator: allocCtx, cancel: cancel, logger: logger}, nil
}

func (b *Browser) Close() {
	if b.cancel != nil {
		b.cancel()
	}
}

// Fetch navigates to target in a fresh tab and returns the rendered HTML,
// the computed stylesheet text, a full-page screenshot, and the viewport
// it was rendered at.
func (b *Browser) Fetch(ctx context.Context, target string) (*extract.RawPageBundle, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("browser fetch: empty target url")
	}
	taskCtx, cancelBrowser := chromedp.NewContext(b.allocator)
	defer cancelBrowser()

	if ctx != nil {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithCancel(taskCtx)
		go func() {
			select {
			case <-ctx.Done():
				cancel()
			case <-taskCtx.Done():
			}
		}()
		defer cancel()
	}

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, browserTimeout)
	defer cancelTimeout()

	var mu sync.Mutex
	activeRequests := 0
	lastActivity := time.Now()
	mainRequestID := network.RequestID("")
	mainStatus := 0

	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			mu.Lock()
			activeRequests++
			lastActivity = time.Now()
			if e.Type == network.ResourceTypeDocument {
				mainRequestID = e.RequestID
			}
			mu.Unlock()
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			mu.Lock()
			if activeRequests > 0 {
				activeRequests--
			}
			lastActivity = time.Now()
			mu.Unlock()
		case *network.EventResponseReceived:
			if e.RequestID == mainRequestID && e.Type == network.ResourceTypeDocument {
				mu.Lock()
				mainStatus = int(e.Response.Status)
				mu.Unlock()
			}
		}
	})

	var (
		finalURL    string
		htmlContent string
		cssContent  string
		screenshot  []byte
	)

	actions := []chromedp.Action{
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDeviceMetricsOverride(viewportWidth, viewportHeight, 1, false).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(browserUserAgent).Do(ctx)
		}),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Wait until the network has been quiet for a beat; late-loading
		// stylesheets and fonts change what we extract.
		chromedp.ActionFunc(func(ctx context.Context) error {
			ticker := time.NewTicker(50 * time.Millisecond)
			defer ticker.Stop()
			for {
				mu.Lock()
				active := activeRequests
				elapsed := time.Since(lastActivity)
				mu.Unlock()
				if active == 0 && elapsed >= networkIdleAfter {
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
			}
		}),
		chromedp.Evaluate(computedCSSJS, &cssContent),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
		chromedp.FullScreenshot(&screenshot, 80),
	}

	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return nil, fmt.Errorf("browser fetch %s: %w", target, err)
	}

	mu.Lock()
	status := mainStatus
	mu.Unlock()
	if status >= 400 {
		return nil, &Error{Status: status, Reason: fmt.Sprintf("upstream status %d", status)}
	}
	if status == 0 {
		b.logger.Printf("FETCH browser: no document response observed for %s", target)
	}

	if finalURL == "" {
		finalURL = target
	}
	bundle := &extract.RawPageBundle{
		HTML:       htmlContent,
		Screenshot: screenshot,
		Viewport:   extract.Viewport{Width: viewportWidth, Height: viewportHeight},
		SourceURL:  finalURL,
	}
	if css := strings.TrimSpace(cssContent); css != "" {
		bundle.CSSSources = append(bundle.CSSSources, extract.CSSSource{Origin: extract.CSSOriginInline, Text: css})
	}
	return bundle, nil
}
