package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"notemaster/pkg/errors"
)

// ErrChromeMissing is returned when no headless browser can be found
var ErrChromeMissing = errors.New(errors.ErrTypeExport, "CHROME_MISSING", "headless chrome not installed").
	WithUserMessage("PDF export needs Chrome or Chromium installed")

var chromeCandidates = []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"}

// Capture is a PNG bitmap of the rendered notes container
type Capture struct {
	PNG    []byte
	Width  int
	Height int
}

// Chrome drives a headless browser for capture and PDF packaging
type Chrome struct {
	execPath string
	timeout  time.Duration
}

// NewChrome locates a browser. path may be empty to search PATH.
func NewChrome(path string, timeout time.Duration) (*Chrome, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if path != "" {
		if _, err := exec.LookPath(path); err != nil {
			return nil, ErrChromeMissing.WithCause(err).WithContext("path", path)
		}
		return &Chrome{execPath: path, timeout: timeout}, nil
	}
	for _, candidate := range chromeCandidates {
		if found, err := exec.LookPath(candidate); err == nil {
			return &Chrome{execPath: found, timeout: timeout}, nil
		}
	}
	return nil, ErrChromeMissing
}

func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(c.execPath),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	return chromedp.Run(taskCtx, actions...)
}

// Capture renders html and screenshots the notes container
func (c *Chrome) Capture(ctx context.Context, html string) (*Capture, error) {
	var buf []byte
	err := c.run(ctx,
		chromedp.EmulateViewport(794, 1123),
		loadHTML(html),
		chromedp.WaitReady("#"+ContainerID, chromedp.ByQuery),
		chromedp.Screenshot("#"+ContainerID, &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome capture failed: %w", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	log.Printf("Captured notes container: %dx%d px", cfg.Width, cfg.Height)
	return &Capture{PNG: buf, Width: cfg.Width, Height: cfg.Height}, nil
}

// PrintPDF prints html at the given paper size without margins
func (c *Chrome) PrintPDF(ctx context.Context, html string, format PageFormat) ([]byte, error) {
	var pdf []byte
	err := c.run(ctx,
		loadHTML(html),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(format.WidthInches()).
				WithPaperHeight(format.HeightInches()).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome pdf generation failed: %w", err)
	}
	return pdf, nil
}

// loadHTML replaces the blank page's document with html. Navigating to a
// data URL would hit the browser's URL length limit for large captures.
func loadHTML(html string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
	}
}
