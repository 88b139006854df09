package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserOptions configures headless rendering.
type BrowserOptions struct {
	ExecPath     string // Chrome binary; empty = auto-detect
	UserAgent    string
	Timeout      time.Duration
	WaitSelector string // element that marks the page as rendered
}

// BrowserFetcher renders pages in headless Chrome so client-side rendered
// documentation is extracted after its scripts have run. All fetches share
// one browser process, each in its own tab.
type BrowserFetcher struct {
	opts          BrowserOptions
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

// NewBrowserFetcher starts the browser.
func NewBrowserFetcher(ctx context.Context, opts BrowserOptions) (*BrowserFetcher, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.WaitSelector == "" {
		opts.WaitSelector = "body"
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(opts.UserAgent),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 1024),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	// Running an empty action list launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return &BrowserFetcher{
		opts:          opts,
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
	}, nil
}

// Fetch renders url in a new tab and returns the resulting DOM.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	start := time.Now()

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.opts.Timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html, finalURL string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(b.opts.WaitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("browser fetch %s: %w", url, err)
	}

	return &Document{
		URL:         url,
		FinalURL:    finalURL,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
		Rendered:    true,
		FetchTime:   time.Since(start),
	}, nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	b.cancelBrowser()
	b.cancelAlloc()
}
