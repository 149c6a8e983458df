package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"ski-search/internal/observability"
)

// ScrapingBeeURL is the ScrapingBee HTML API endpoint
const ScrapingBeeURL = "https://app.scrapingbee.com/api/v1/"

// ScrapingBeeOptions configures the ScrapingBee request
type ScrapingBeeOptions struct {
	// RenderJS enables JavaScript rendering
	RenderJS bool
	// Premium uses residential proxies
	Premium bool
	// Country sets the proxy country (e.g. "at")
	Country string
	// WaitForSelector waits for a CSS selector before returning
	WaitForSelector string
	// Wait adds a fixed delay in milliseconds after page load
	Wait int
	// BlockResources blocks images and stylesheets
	BlockResources bool
}

// DefaultScrapingBeeOptions returns options suited to skiresort.info pages,
// which render server-side.
func DefaultScrapingBeeOptions() ScrapingBeeOptions {
	return ScrapingBeeOptions{
		RenderJS:       false,
		BlockResources: true,
	}
}

// ScrapingBeeFetcher fetches pages through ScrapingBee's proxy API
type ScrapingBeeFetcher struct {
	apiKey   string
	endpoint string
	http     *resty.Client
	limiter  *rate.Limiter
	opts     ScrapingBeeOptions
}

// NewScrapingBeeFetcher creates a proxy fetcher. An empty endpoint uses ScrapingBeeURL.
func NewScrapingBeeFetcher(apiKey, endpoint string, delay time.Duration, opts ScrapingBeeOptions) *ScrapingBeeFetcher {
	if endpoint == "" {
		endpoint = ScrapingBeeURL
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	client := resty.New().
		// JS rendering can take minutes
		SetTimeout(180 * time.Second).
		SetRetryCount(0)

	return &ScrapingBeeFetcher{
		apiKey:   apiKey,
		endpoint: endpoint,
		http:     client,
		limiter:  rate.NewLimiter(limit, 1),
		opts:     opts,
	}
}

func (c *ScrapingBeeFetcher) params(targetURL string) map[string]string {
	p := map[string]string{
		"api_key": c.apiKey,
		"url":     targetURL,
	}
	// the API renders JS unless told not to
	p["render_js"] = strconv.FormatBool(c.opts.RenderJS)
	if c.opts.Premium {
		p["premium_proxy"] = "true"
	}
	if c.opts.Country != "" {
		p["country_code"] = c.opts.Country
	}
	if c.opts.WaitForSelector != "" {
		p["wait_for"] = c.opts.WaitForSelector
	}
	if c.opts.Wait > 0 {
		p["wait"] = strconv.Itoa(c.opts.Wait)
	}
	if c.opts.BlockResources {
		p["block_resources"] = "true"
	}
	return p
}

// Fetch retrieves a URL through ScrapingBee
func (c *ScrapingBeeFetcher) Fetch(ctx context.Context, targetURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(c.params(targetURL)).
		Get(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("scrapingbee request for %s failed: %w", targetURL, err)
	}
	observability.ObserveExternal("scrapingbee", endpointLabel(targetURL), res.StatusCode(), time.Since(start))

	// ScrapingBee returns error details in the response body
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from scrapingbee for %s: %s", ErrUnexpectedStatus, res.StatusCode(), targetURL, res.String())
	}

	if cost := res.Header().Get("Spb-Cost"); cost != "" {
		log.Debug().Str("url", targetURL).Str("credits", cost).Msg("scrapingbee request")
	}
	return res.Body(), nil
}
