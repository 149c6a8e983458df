package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config holds process-level settings read from the environment
type Config struct {
	AppEnv         string
	DBPath         string
	HTTPAddr       string
	MetricsAddr    string
	RedisAddr      string
	RedisPass      string
	RedisDB        int
	ScrapeDelay    time.Duration
	PageCacheTTL   time.Duration
	ScrapeConfig   string
	ScrapingBeeKey string
}

// Load reads an optional .env file and then the environment
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env")
	}

	return Config{
		AppEnv:         env("APP_ENV", "prod"),
		DBPath:         env("DB_PATH", "data/resorts.db"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		ScrapeDelay:    time.Duration(atoi("SCRAPE_DELAY_MS", 2000)) * time.Millisecond,
		PageCacheTTL:   time.Duration(atoi("PAGE_CACHE_TTL_SECONDS", 86400)) * time.Second,
		ScrapeConfig:   env("SCRAPE_CONFIG", ""),
		ScrapingBeeKey: env("SCRAPINGBEE_API_KEY", ""),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric setting")
	}
	return def
}

// ScrapeTargets is the YAML description of what a scrape run covers
type ScrapeTargets struct {
	Countries  []string `yaml:"countries"`
	MaxPages   int      `yaml:"max_pages"`
	TopRated   int      `yaml:"top_rated"`
	PerCountry int      `yaml:"per_country"`
	Limit      int      `yaml:"limit"`
	BatchSize  int      `yaml:"batch_size"`
	DelayMS    int      `yaml:"delay_ms"`
	UserAgent  string   `yaml:"user_agent"`
	Profile    string   `yaml:"profile"`
}

// LoadScrapeTargets decodes a scrape target file
func LoadScrapeTargets(path string) (*ScrapeTargets, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scrape config: %w", err)
	}
	defer f.Close()

	t := &ScrapeTargets{}
	if err := yaml.NewDecoder(f).Decode(t); err != nil {
		return nil, fmt.Errorf("failed to decode scrape config %s: %w", path, err)
	}
	return t, nil
}

// Delay returns the configured delay, or zero when unset
func (t *ScrapeTargets) Delay() time.Duration {
	return time.Duration(t.DelayMS) * time.Millisecond
}

// ProfileName returns the conversion profile named in the scrape target file
// at path. It is empty when path is empty, unreadable or names no profile.
func ProfileName(path string) string {
	if path == "" {
		return ""
	}
	t, err := LoadScrapeTargets(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("ignoring scrape config for profile selection")
		return ""
	}
	return t.Profile
}
