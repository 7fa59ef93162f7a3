package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// browserSession is a scoped browser acquisition: one headless Chrome
// instance and one page, owned by exactly one extraction call. Release is
// guaranteed through Close on every exit path of the caller.
type browserSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// newBrowserSession launches an isolated headless browser and opens a blank
// page. On any partial failure everything acquired so far is released
// before returning.
func newBrowserSession(ctx context.Context) (*browserSession, error) {
	l := launcher.New().
		Headless(true).
		Leakless(true).
		Set("no-sandbox").
		Set("disable-dev-shm-usage")

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	return &browserSession{
		launcher: l,
		browser:  browser,
		page:     page,
	}, nil
}

// RenderHTML navigates the session's page to the URL, waits until loading
// settles or navTimeout elapses, allows settleDelay for deferred client
// rendering, and returns the rendered HTML.
func (s *browserSession) RenderHTML(ctx context.Context, url string, navTimeout, settleDelay time.Duration) (string, error) {
	page := s.page.Context(ctx).Timeout(navTimeout)

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for load: %w", err)
	}

	// Deferred client rendering keeps mutating the DOM after load
	select {
	case <-time.After(settleDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading rendered HTML: %w", err)
	}
	return html, nil
}

// Close releases the page, browser and launcher process. Safe to defer
// immediately after acquisition.
func (s *browserSession) Close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
}

// fetchRenderedHTML is the scoped acquire-use-release wrapper every dynamic
// caller goes through: acquire a session, render one URL, release.
func fetchRenderedHTML(ctx context.Context, url string, navTimeout, settleDelay time.Duration) (string, error) {
	session, err := newBrowserSession(ctx)
	if err != nil {
		return "", err
	}
	defer session.Close()

	return session.RenderHTML(ctx, url, navTimeout, settleDelay)
}
