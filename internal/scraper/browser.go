package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"ski-search/internal/observability"
)

// BrowserFetcher renders pages in headless Chrome. It is slower than
// HTTPFetcher but sees content that is filled in by scripts.
type BrowserFetcher struct {
	allocCtx  context.Context
	cancel    context.CancelFunc
	headless  bool
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewBrowserFetcher creates a browser fetcher; call Start before Fetch
func NewBrowserFetcher(headless bool, delay time.Duration) *BrowserFetcher {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &BrowserFetcher{
		headless:  headless,
		userAgent: DefaultUserAgent,
		timeout:   45 * time.Second,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Start initializes the browser allocator
func (b *BrowserFetcher) Start() error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(b.userAgent),
	)

	b.allocCtx, b.cancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return nil
}

// Stop closes the browser
func (b *BrowserFetcher) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
}

// Fetch navigates to pageURL and returns the rendered document
func (b *BrowserFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if b.allocCtx == nil {
		return nil, errors.New("browser not started")
	}
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// A fresh tab per page; cancelling ctx closes it.
	taskCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()
	taskCtx, cancel = context.WithTimeout(taskCtx, b.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	var html string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	status := 200
	if err != nil {
		status = 0
	}
	observability.ObserveExternal("skiresort_browser", endpointLabel(pageURL), status, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("navigation to %s failed: %w", pageURL, err)
	}

	log.Debug().Str("url", pageURL).Int("bytes", len(html)).Msg("page rendered")
	return []byte(html), nil
}
