package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome and returns the DOM after
// scripts have run. It is meant for storefronts that build the product page
// client side.
type BrowserFetcher struct {
	opts   Options
	settle time.Duration

	browser context.Context
	cancel  context.CancelFunc
}

// NewBrowserFetcher starts a shared browser. chromeBin may be empty, in which
// case the binary is looked up on the system. Close releases the browser.
func NewBrowserFetcher(opts Options, chromeBin string, settle time.Duration) *BrowserFetcher {
	opts = opts.withDefaults()
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	opts.Logger.Named("browser").Info("using browser binary: %q", chromeBin)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	// Suppress chromedp log noise
	browser, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &BrowserFetcher{
		opts:    opts,
		settle:  settle,
		browser: browser,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}
}

// Fetch opens url in a new tab, waits for the page to settle and returns the
// outer HTML of the document.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var html string

	err := b.opts.retry("browser").Do(ctx, "render "+url, func(ctx context.Context) error {
		tab, cancel := chromedp.NewContext(b.browser)
		defer cancel()

		tab, cancelTimeout := context.WithTimeout(tab, b.opts.Timeout+b.settle)
		defer cancelTimeout()

		// tie the tab to the caller's context as well
		stop := context.AfterFunc(ctx, cancelTimeout)
		defer stop()

		return chromedp.Run(tab,
			chromedp.Navigate(url),
			chromedp.Sleep(b.settle),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
	})
	if err != nil {
		return nil, upstream(url, err)
	}
	if html == "" {
		return nil, upstream(url, fmt.Errorf("render: %w", errEmptyBody))
	}
	return []byte(html), nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	b.cancel()
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
