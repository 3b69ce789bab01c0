// Package capture rasterizes the initial viewport of a webpage with a
// headless browser.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

var (
	// ErrCaptureTimeout is returned when the page does not reach a loaded
	// state within the configured timeout.
	ErrCaptureTimeout = errors.New("capture timed out")
	// ErrCaptureNetwork is returned for unreachable hosts, TLS failures, and
	// other navigation errors.
	ErrCaptureNetwork = errors.New("capture network failure")
)

// Defaults for the capture viewport and timing.
const (
	DefaultWidth   = 1080
	DefaultHeight  = 1920
	DefaultTimeout = 30 * time.Second

	// settleDelay gives client-side rendering a moment after the document
	// is ready before the screenshot is taken.
	settleDelay = 2 * time.Second
)

// DefaultUserAgent presents as a mobile browser so pages serve the layout
// that suits a portrait story canvas.
const DefaultUserAgent = "Mozilla/5.0 (Linux; Android 12; Pixel 6) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Mobile Safari/537.36"

// Result holds one captured screenshot. The image is PNG-encoded.
type Result struct {
	SourceURL  string
	Image      []byte
	CapturedAt time.Time
}

// Options configures the capture behavior.
type Options struct {
	Width       int
	Height      int
	Timeout     time.Duration
	BrowserPath string // optional browser executable; affects fidelity only
	UserAgent   string
	Verbose     bool
}

// DefaultOptions returns sensible defaults for capturing.
func DefaultOptions() *Options {
	return &Options{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client captures screenshots via a headless browser.
type Client struct {
	opts *Options
}

// NewClient creates a capture client. Zero-valued options fall back to
// defaults.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{opts: opts}
}

// Capture navigates to url and screenshots the initial viewport. No scrolling
// or interaction is performed; the page gets WaitReady("body") plus a short
// settle delay, bounded overall by the configured timeout.
func (c *Client) Capture(ctx context.Context, url string) (*Result, error) {
	if c.opts.Verbose {
		log.Printf("[VERBOSE] capturing %s (%dx%d, timeout %s)", url, c.opts.Width, c.opts.Height, c.opts.Timeout)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(c.opts.UserAgent),
	)
	if c.opts.BrowserPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.opts.BrowserPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, c.opts.Timeout)
	defer cancelTimeout()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(c.opts.Width), int64(c.opts.Height)),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, classify(err, url)
	}

	if c.opts.Verbose {
		log.Printf("[VERBOSE] captured %s: %d bytes", url, len(buf))
	}

	return &Result{
		SourceURL:  url,
		Image:      buf,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// classify maps a chromedp failure to the capture error taxonomy. A deadline
// hit is a normal, expected outcome; everything else on the way to a loaded
// page counts as a network failure.
func classify(err error, url string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", ErrCaptureTimeout, url)
	default:
		return fmt.Errorf("%w: %s: %v", ErrCaptureNetwork, url, err)
	}
}
