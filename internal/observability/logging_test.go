package observability_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ski-search/internal/observability"
)

func TestNewLoggerToWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := observability.NewLoggerTo(&buf, "prod")
	l.Info().Str("url", "https://www.skiresort.info/").Msg("fetched")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "fetched", entry["message"])
	assert.Equal(t, "https://www.skiresort.info/", entry["url"])
	assert.Contains(t, entry, "time")
}

func TestNewLoggerToConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	l := observability.NewLoggerTo(&buf, "dev")
	l.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(buf.Bytes()))
}
