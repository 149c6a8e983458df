package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"ski-search/internal/config"
	"ski-search/internal/db"
	"ski-search/internal/export"
	"ski-search/internal/observability"
	"ski-search/internal/scraper"
)

func main() {
	cfg := config.Load()
	observability.SetupLogging(cfg.AppEnv)

	// Parse command line flags
	dbPath := flag.String("db", cfg.DBPath, "Path to SQLite database (empty to skip storing)")
	configPath := flag.String("config", cfg.ScrapeConfig, "YAML file describing scrape targets")
	countries := flag.String("countries", "", "Comma-separated countries to scrape (e.g. austria,switzerland)")
	maxPages := flag.Int("pages", 0, "Maximum listing pages per country")
	topRated := flag.Int("top", 0, "Number of top-rated resorts to include")
	perCountry := flag.Int("per-country", 0, "Maximum resorts per country")
	limit := flag.Int("limit", 0, "Maximum resorts overall")
	delay := flag.Duration("delay", cfg.ScrapeDelay, "Delay between requests")
	useBrowser := flag.Bool("browser", false, "Render pages in headless Chrome")
	headless := flag.Bool("headless", true, "Run browser in headless mode (set false to see browser)")
	useProxy := flag.Bool("proxy", false, "Fetch through ScrapingBee (needs SCRAPINGBEE_API_KEY)")
	geocode := flag.Bool("geocode", false, "Look up coordinates with Nominatim")
	out := flag.String("out", "data/resorts_raw.json", "Raw JSON output file (empty to skip)")
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Configure scraper: defaults, then the target file, then flags
	sc := scraper.DefaultConfig()
	userAgent := ""
	if *configPath != "" {
		targets, err := config.LoadScrapeTargets(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load scrape targets")
		}
		applyTargets(&sc, targets)
		userAgent = targets.UserAgent
		if targets.DelayMS > 0 && !set["delay"] {
			*delay = targets.Delay()
		}
	}
	if set["countries"] {
		sc.Countries = splitList(*countries)
	}
	if set["pages"] {
		sc.MaxPages = *maxPages
	}
	if set["top"] {
		sc.TopRated = *topRated
	}
	if set["per-country"] {
		sc.PerCountry = *perCountry
	}
	if set["limit"] {
		sc.Limit = *limit
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("received interrupt signal, shutting down")
		cancel()
	}()

	fetcher, closeFetcher, err := newFetcher(cfg, fetchMode{browser: *useBrowser, headless: *headless, proxy: *useProxy}, *delay, userAgent)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up fetcher")
	}
	defer closeFetcher()

	var store scraper.Store
	if *dbPath != "" {
		database, err := db.New(*dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database")
		}
		defer database.Close()
		store = database
		log.Info().Str("path", *dbPath).Msg("using database")
	}

	s := scraper.New(fetcher, store, sc)
	if *geocode {
		s.WithGeocoder(scraper.NewGeocoder(""))
	}

	log.Info().Strs("countries", sc.Countries).Int("top", sc.TopRated).Int("pages", sc.MaxPages).
		Int("per_country", sc.PerCountry).Int("limit", sc.Limit).Dur("delay", *delay).Msg("starting ski resort scraper")
	startTime := time.Now()

	resorts, err := s.Run(ctx)
	switch {
	case errors.Is(err, scraper.ErrNoResortURLs):
		log.Error().Msg("no resort URLs found")
		os.Exit(1)
	case ctx.Err() == context.Canceled && len(resorts) == 0:
		log.Warn().Msg("scraper cancelled by user before any resort was scraped, keeping existing output")
		return
	case ctx.Err() == context.Canceled:
		log.Warn().Int("scraped", len(resorts)).Msg("scraper cancelled by user, saving partial results")
	case err != nil:
		log.Fatal().Err(err).Msg("scraper failed")
	}

	if *out != "" {
		err := export.WriteFile(*out, func(w io.Writer) error {
			return export.WriteRaw(w, resorts)
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to write raw data")
		}
		log.Info().Str("path", *out).Int("count", len(resorts)).Msg("raw data saved")
	}

	log.Info().Int("count", len(resorts)).Dur("took", time.Since(startTime)).Msg("scraping completed")
}

func applyTargets(sc *scraper.Config, t *config.ScrapeTargets) {
	if len(t.Countries) > 0 {
		sc.Countries = t.Countries
	}
	if t.MaxPages > 0 {
		sc.MaxPages = t.MaxPages
	}
	if t.TopRated > 0 {
		sc.TopRated = t.TopRated
	}
	if t.PerCountry > 0 {
		sc.PerCountry = t.PerCountry
	}
	if t.Limit > 0 {
		sc.Limit = t.Limit
	}
	if t.BatchSize > 0 {
		sc.BatchSize = t.BatchSize
	}
}

type fetchMode struct {
	browser  bool
	headless bool
	proxy    bool
}

// newFetcher builds the page fetcher and returns a func releasing its resources
func newFetcher(cfg config.Config, mode fetchMode, delay time.Duration, userAgent string) (scraper.Fetcher, func(), error) {
	if mode.browser && mode.proxy {
		return nil, nil, errors.New("-browser and -proxy are mutually exclusive")
	}
	if mode.proxy {
		if cfg.ScrapingBeeKey == "" {
			return nil, nil, errors.New("SCRAPINGBEE_API_KEY is not set")
		}
		return scraper.NewScrapingBeeFetcher(cfg.ScrapingBeeKey, "", delay, scraper.DefaultScrapingBeeOptions()), func() {}, nil
	}
	if mode.browser {
		b := scraper.NewBrowserFetcher(mode.headless, delay)
		if err := b.Start(); err != nil {
			return nil, nil, err
		}
		return b, b.Stop, nil
	}

	opts := scraper.FetcherOptions{UserAgent: userAgent, Delay: delay}
	if cfg.RedisAddr == "" {
		return scraper.NewHTTPFetcher(opts), func() {}, nil
	}

	cache := scraper.NewRedisPageCache(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("page cache unavailable, fetching without it")
		cache.Close()
		return scraper.NewHTTPFetcher(opts), func() {}, nil
	}
	opts.Cache = cache
	opts.CacheTTL = cfg.PageCacheTTL
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.PageCacheTTL).Msg("using redis page cache")
	return scraper.NewHTTPFetcher(opts), func() { cache.Close() }, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
