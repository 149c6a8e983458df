package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ski-search/internal/extract"
	"ski-search/internal/models"
	"ski-search/internal/observability"
)

// ErrNoResortURLs is returned when discovery finds nothing to scrape
var ErrNoResortURLs = errors.New("no resort URLs discovered")

// Config holds scraper configuration
type Config struct {
	BaseURL    string
	Countries  []string
	MaxPages   int
	TopRated   int
	PerCountry int
	// Limit caps the total number of resort pages (0 = no cap)
	Limit int
	// BatchSize is how often progress is logged
	BatchSize int
}

// DefaultConfig returns default scraper settings
func DefaultConfig() Config {
	return Config{
		BaseURL: BaseURL,
		Countries: []string{
			"austria",
			"switzerland",
			"france",
			"italy",
		},
		MaxPages:   5,
		TopRated:   20,
		PerCountry: 10,
		BatchSize:  5,
	}
}

// Store persists scraped resorts
type Store interface {
	UpsertResort(r *models.Resort) error
}

// Scraper discovers resort pages, extracts them and stores the records
type Scraper struct {
	fetcher   Fetcher
	extractor *extract.Extractor
	store     Store
	geo       *Geocoder
	config    Config
	now       func() time.Time
}

// New creates a new Scraper. store may be nil.
func New(fetcher Fetcher, store Store, config Config) *Scraper {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 5
	}
	return &Scraper{
		fetcher:   fetcher,
		extractor: extract.Default(),
		store:     store,
		config:    config,
		now:       time.Now,
	}
}

// WithGeocoder enables geocoding of resorts that lack coordinates
func (s *Scraper) WithGeocoder(g *Geocoder) *Scraper {
	s.geo = g
	return s
}

// Discover returns the resort URLs for the configured targets: top-rated
// first, then each country, de-duplicated in order.
func (s *Scraper) Discover(ctx context.Context) ([]string, error) {
	d, err := NewDiscoverer(s.fetcher, s.config.BaseURL)
	if err != nil {
		return nil, err
	}

	var urls []string
	if s.config.TopRated > 0 {
		top, err := d.TopRatedURLs(ctx, s.config.TopRated)
		if err != nil {
			return nil, err
		}
		log.Info().Int("count", len(top)).Msg("top-rated resorts discovered")
		urls = append(urls, top...)
	}

	for _, country := range s.config.Countries {
		found, err := d.CountryResortURLs(ctx, country, s.config.MaxPages, s.config.PerCountry)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if err != nil {
			log.Error().Err(err).Str("country", country).Msg("country discovery failed")
			continue
		}
		log.Info().Str("country", country).Int("count", len(found)).Msg("country resorts discovered")
		urls = append(urls, found...)
	}

	urls = Dedupe(urls)
	if s.config.Limit > 0 && len(urls) > s.config.Limit {
		urls = urls[:s.config.Limit]
	}
	return urls, nil
}

// ScrapeResort fetches one resort page and extracts its record
func (s *Scraper) ScrapeResort(ctx context.Context, resortURL string) (*models.Resort, error) {
	body, err := s.fetcher.Fetch(ctx, resortURL)
	if err != nil {
		return nil, err
	}
	page, err := extract.NewPage(bytes.NewReader(body), resortURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", resortURL, err)
	}

	r := s.extractor.ExtractPage(page)
	r.ScrapedAt = s.now().UTC()
	return &r, nil
}

// Run executes the scraping process and returns the records that had a name.
// Pages that fail are logged and skipped. Once discovery succeeds the slice
// is non-nil, even when every page failed.
func (s *Scraper) Run(ctx context.Context) ([]models.Resort, error) {
	log.Info().Msg("starting scraper")
	startTime := time.Now()

	urls, err := s.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	if len(urls) == 0 {
		return nil, ErrNoResortURLs
	}
	log.Info().Int("count", len(urls)).Msg("resorts to scrape")

	resorts := []models.Resort{}
	failed := 0
	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return resorts, err
		}

		r, err := s.ScrapeResort(ctx, u)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return resorts, ctx.Err()
			}
			log.Error().Err(err).Str("url", u).Msg("resort page failed")
			observability.ObserveResort("fetch_error")
			failed++
		case r.Name == "":
			log.Warn().Str("url", u).Msg("could not extract resort name")
			observability.ObserveResort("nameless")
			failed++
		default:
			s.finish(ctx, r)
			resorts = append(resorts, *r)
			observability.ObserveResort("ok")
			log.Info().Str("name", r.Name).Str("url", u).Msg("resort scraped")
		}

		if (i+1)%s.config.BatchSize == 0 {
			log.Info().Int("done", i+1).Int("of", len(urls)).Int("ok", len(resorts)).Int("failed", failed).Msg("progress")
		}
	}

	log.Info().Int("ok", len(resorts)).Int("failed", failed).Dur("took", time.Since(startTime)).Msg("scraping complete")
	return resorts, nil
}

// finish geocodes and stores a scraped record; failures are logged only
func (s *Scraper) finish(ctx context.Context, r *models.Resort) {
	if s.geo != nil {
		if _, err := s.geo.GeocodeResort(ctx, r); err != nil {
			log.Warn().Err(err).Str("name", r.Name).Msg("geocoding failed")
		}
	}
	if s.store != nil {
		if err := s.store.UpsertResort(r); err != nil {
			log.Error().Err(err).Str("url", r.URL).Msg("failed to save resort")
		}
	}
}
