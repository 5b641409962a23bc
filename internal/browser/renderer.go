// Package browser fetches review pages through headless Chrome, for pages
// whose scorecards are only present after client-side rendering.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const defaultRenderTimeout = 60 * time.Second

var (
	chromedpExecAllocator = chromedp.NewExecAllocator
	chromedpContext       = chromedp.NewContext
	chromedpRunner        = chromedp.Run
)

// documentActions loads pageURL and captures the rendered markup into html.
var documentActions = func(pageURL string, html *string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", html, chromedp.ByQuery),
	}
}

// Options configures the headless browser.
type Options struct {
	Origin   string
	Session  string
	Headless bool
	Timeout  time.Duration
}

// Renderer keeps one browser tab open for a whole run.
type Renderer struct {
	ctx     context.Context
	cancel  func()
	timeout time.Duration
}

// NewRenderer starts a browser and installs the session cookies for opts.Origin.
func NewRenderer(parentCtx context.Context, opts Options) (*Renderer, error) {
	if opts.Origin == "" {
		return nil, errors.New("browser renderer requires an origin")
	}
	origin, err := url.Parse(opts.Origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", opts.Origin, err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultRenderTimeout
	}

	allocCtx, cancelAllocator := chromedpExecAllocator(parentCtx, buildExecAllocatorOptions(opts)...)
	browserCtx, cancelBrowser := chromedpContext(allocCtx)

	r := &Renderer{
		ctx:     browserCtx,
		timeout: timeout,
		cancel: func() {
			cancelBrowser()
			cancelAllocator()
		},
	}

	if err := chromedpRunner(browserCtx, cookieActions(origin.Hostname(), opts.Session)...); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to set session cookies: %w", err)
	}

	slog.Info("Started headless browser", "origin", opts.Origin, "headless", opts.Headless)
	return r, nil
}

func buildExecAllocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-default-apps", true),
	}
}

func cookieActions(domain, session string) []chromedp.Action {
	cookies := [][2]string{
		{"global-store", "auto"},
		{"pref-country", "zz"},
		{"_rtings_session", session},
	}
	actions := make([]chromedp.Action, 0, len(cookies))
	for _, c := range cookies {
		actions = append(actions, network.SetCookie(c[0], c[1]).WithDomain(domain).WithPath("/"))
	}
	return actions
}

// FetchDocument navigates to pageURL and returns the rendered HTML.
func (r *Renderer) FetchDocument(ctx context.Context, pageURL string) (string, error) {
	tabCtx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	if err := chromedpRunner(tabCtx, documentActions(pageURL, &html)); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to render %s: %w", pageURL, err)
	}
	slog.Debug("Rendered page", "url", pageURL, "bytes", len(html))
	return html, nil
}

// Close shuts the browser down.
func (r *Renderer) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}
