package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// BaseURL is the skiresort.info site root
const BaseURL = "https://www.skiresort.info"

// CountryPaths maps supported country keys to their listing path
var CountryPaths = map[string]string{
	"austria":     "/ski-resorts/austria/",
	"switzerland": "/ski-resorts/switzerland/",
	"france":      "/ski-resorts/france/",
	"italy":       "/ski-resorts/italy/",
	"germany":     "/ski-resorts/germany/",
	"usa":         "/ski-resorts/usa/",
	"canada":      "/ski-resorts/canada/",
}

// RankingPaths are scanned, in order, for top-rated resorts
var RankingPaths = []string{
	"/best-ski-resorts/",
	"/best-ski-resorts/europe/",
	"/ski-resorts/",
}

var skippedSubpages = []string{"/test-report/", "/snow-report/", "/webcams/", "/trail-map/", "/photos/"}

var bareResortPath = regexp.MustCompile(`/ski-resort/[a-zA-Z0-9-]+$`)

// Discoverer finds resort page URLs on listing and ranking pages
type Discoverer struct {
	fetcher Fetcher
	base    *url.URL
}

// NewDiscoverer creates a discoverer rooted at baseURL
func NewDiscoverer(fetcher Fetcher, baseURL string) (*Discoverer, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	return &Discoverer{fetcher: fetcher, base: u}, nil
}

// CountryResortURLs walks a country's paginated listing. It stops at
// maxPages (0 means no limit), at a page with no resort links, when no next
// page is advertised, or on the first page error. At most limit URLs are
// returned when limit > 0.
func (d *Discoverer) CountryResortURLs(ctx context.Context, country string, maxPages, limit int) ([]string, error) {
	path, ok := CountryPaths[strings.ToLower(country)]
	if !ok {
		return nil, fmt.Errorf("unsupported country %q", country)
	}
	listing := d.base.ResolveReference(&url.URL{Path: path}).String()

	var urls []string
	for page := 1; maxPages <= 0 || page <= maxPages; page++ {
		select {
		case <-ctx.Done():
			return Dedupe(urls), ctx.Err()
		default:
		}

		pageURL := listing
		if page > 1 {
			pageURL = fmt.Sprintf("%spage/%d/", listing, page)
		}
		log.Info().Str("country", country).Int("page", page).Str("url", pageURL).Msg("scanning listing page")

		doc, err := d.document(ctx, pageURL)
		if err != nil {
			log.Error().Err(err).Str("url", pageURL).Msg("listing page failed")
			break
		}

		found := d.ResortLinks(doc)
		if len(found) == 0 {
			log.Info().Int("page", page).Msg("no resorts on page, stopping")
			break
		}
		urls = Dedupe(append(urls, found...))
		log.Info().Int("page", page).Int("found", len(found)).Int("total", len(urls)).Msg("listing page scanned")

		if limit > 0 && len(urls) >= limit {
			return urls[:limit], nil
		}
		if !HasNextPage(doc, page) {
			break
		}
	}

	return urls, nil
}

// TopRatedURLs collects resort links from the ranking pages until limit
// URLs are found. Failing ranking pages are skipped.
func (d *Discoverer) TopRatedURLs(ctx context.Context, limit int) ([]string, error) {
	var urls []string
	for _, path := range RankingPaths {
		if limit > 0 && len(urls) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return urls, err
		}

		pageURL := d.base.ResolveReference(&url.URL{Path: path}).String()
		doc, err := d.document(ctx, pageURL)
		if err != nil {
			log.Error().Err(err).Str("url", pageURL).Msg("ranking page failed")
			continue
		}
		urls = Dedupe(append(urls, d.ResortLinks(doc)...))
	}

	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}

func (d *Discoverer) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := d.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// ResortLinks returns main resort page links on doc, absolute and in
// document order. Sub-pages such as test reports are skipped.
func (d *Discoverer) ResortLinks(doc *goquery.Document) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !strings.HasPrefix(href, "/ski-resort/") && !strings.Contains(href, "skiresort.info/ski-resort/") {
			return
		}
		for _, sub := range skippedSubpages {
			if strings.Contains(href, sub) {
				return
			}
		}
		if !strings.HasSuffix(href, "/") && !bareResortPath.MatchString(href) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, d.base.ResolveReference(ref).String())
	})
	return Dedupe(links)
}

// HasNextPage reports whether doc links to the page after current
func HasNextPage(doc *goquery.Document, current int) bool {
	next := fmt.Sprintf("page/%d/", current+1)
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		text := strings.TrimSpace(a.Text())
		if strings.Contains(href, next) ||
			strings.Contains(text, "›") || strings.Contains(text, "»") || strings.Contains(text, "Next") {
			found = true
			return false
		}
		return true
	})
	return found
}

// Dedupe removes repeated URLs, keeping the first occurrence
func Dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
