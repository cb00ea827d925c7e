package browser

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// Options tune the headless browser used to render search pages.
type Options struct {
	ChromeBin   string
	UserAgent   string
	Headless    bool
	PageTimeout time.Duration
}

// Renderer drives a headless Chrome instance. 591 ships its search
// results inside window.__NUXT__, so pages must execute their scripts
// before anything can be extracted.
type Renderer struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	pageTimeout time.Duration
}

// New spawns an exec allocator shared by all page loads.
func New(opts Options) *Renderer {
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 30 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	if bin := chromeBinary(opts.ChromeBin); bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &Renderer{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		pageTimeout: opts.PageTimeout,
	}
}

// Evaluate navigates to pageURL and runs the extraction script in the
// page's JS context, unmarshaling the result into out.
func (r *Renderer) Evaluate(ctx context.Context, pageURL, script string, out any) error {
	tabCtx, cancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.pageTimeout)
	defer cancelTimeout()

	go func() {
		select {
		case <-ctx.Done():
			cancelTimeout()
		case <-tabCtx.Done():
		}
	}()

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(script, out),
	)
	if err != nil {
		return fmt.Errorf("render %s: %w", pageURL, err)
	}
	return nil
}

// HTML navigates to pageURL and returns the rendered document markup.
func (r *Renderer) HTML(ctx context.Context, pageURL string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.pageTimeout)
	defer cancelTimeout()

	go func() {
		select {
		case <-ctx.Done():
			cancelTimeout()
		case <-tabCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}
	return html, nil
}

// Close tears down the shared allocator.
func (r *Renderer) Close() {
	if r.cancelAlloc != nil {
		r.cancelAlloc()
	}
}

func chromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
