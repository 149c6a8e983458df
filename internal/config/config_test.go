package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears k for the duration of the test
func unsetEnv(t *testing.T, k string) {
	t.Helper()
	t.Setenv(k, "")
	require.NoError(t, os.Unsetenv(k))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24)
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	unsetEnv(t, "HTTP_ADDR")
	unsetEnv(t, "PAGE_CACHE_TTL_SECONDS")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("SCRAPE_DELAY_MS", "500")
	t.Setenv("REDIS_DB", "not-a-number")

	c := Load()
	assert.Equal(t, "/tmp/x.db", c.DBPath)
	assert.Equal(t, 500*time.Millisecond, c.ScrapeDelay)
	assert.Equal(t, 0, c.RedisDB)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 24*time.Hour, c.PageCacheTTL)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDR=:9999\n"), 0o644))
	unsetEnv(t, "HTTP_ADDR")

	c := Load()
	assert.Equal(t, ":9999", c.HTTPAddr)
}

func TestLoadScrapeTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrape.yaml")
	body := `countries: [austria, switzerland]
max_pages: 3
top_rated: 20
per_country: 15
delay_ms: 1500
profile: alpine
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	got, err := LoadScrapeTargets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"austria", "switzerland"}, got.Countries)
	assert.Equal(t, 3, got.MaxPages)
	assert.Equal(t, 20, got.TopRated)
	assert.Equal(t, 15, got.PerCountry)
	assert.Equal(t, 1500*time.Millisecond, got.Delay())
	assert.Equal(t, "alpine", got.Profile)

	_, err = LoadScrapeTargets(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestProfileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrape.yaml")
	require.NoError(t, os.WriteFile(path, []byte("countries: [usa]\nprofile: usa\n"), 0o644))

	assert.Equal(t, "usa", ProfileName(path))
	assert.Equal(t, "", ProfileName(""))
	assert.Equal(t, "", ProfileName(filepath.Join(t.TempDir(), "missing.yaml")))
}
