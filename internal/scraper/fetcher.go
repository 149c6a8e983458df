package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"ski-search/internal/observability"
)

// DefaultUserAgent is sent with every page request
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// ErrUnexpectedStatus is wrapped by fetch errors for non-200 responses
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Fetcher retrieves the HTML of a page
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// FetcherOptions configures an HTTPFetcher
type FetcherOptions struct {
	UserAgent string
	Timeout   time.Duration
	// Delay is the minimum spacing between requests
	Delay    time.Duration
	Cache    PageCache
	CacheTTL time.Duration
}

// HTTPFetcher fetches pages over plain HTTP, one request per Delay
type HTTPFetcher struct {
	http     *resty.Client
	cache    PageCache
	cacheTTL time.Duration
}

// NewHTTPFetcher creates a rate limited fetcher. Requests are never retried.
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(0)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &HTTPFetcher{
		http:     client,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}
}

// Fetch returns the body of pageURL, serving from the page cache when one is set
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if f.cache != nil {
		body, ok, err := f.cache.Get(ctx, pageURL)
		if err != nil {
			log.Warn().Err(err).Str("url", pageURL).Msg("page cache read failed")
		} else if ok {
			return body, nil
		}
	}

	start := time.Now()
	res, err := f.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		observability.ObserveExternal("skiresort", endpointLabel(pageURL), 0, time.Since(start))
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	observability.ObserveExternal("skiresort", endpointLabel(pageURL), res.StatusCode(), time.Since(start))

	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d fetching %s", ErrUnexpectedStatus, res.StatusCode(), pageURL)
	}

	body := res.Body()
	if f.cache != nil {
		if err := f.cache.Set(ctx, pageURL, body, f.cacheTTL); err != nil {
			log.Warn().Err(err).Str("url", pageURL).Msg("page cache write failed")
		}
	}
	return body, nil
}

// endpointLabel buckets a URL into a low-cardinality metrics label
func endpointLabel(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "other"
	}
	switch {
	case strings.HasPrefix(u.Path, "/ski-resort/"):
		return "resort"
	case strings.HasPrefix(u.Path, "/ski-resorts/"):
		return "listing"
	case strings.HasPrefix(u.Path, "/best-ski-resorts/"):
		return "ranking"
	default:
		return "other"
	}
}
