package reddit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, "reddit_cache", c.DataDir)
	assert.Equal(t, 200, c.MaxPerKey)
	assert.Equal(t, 10, c.MinQueueSize)
	assert.Equal(t, 10*time.Minute, c.CacheExpiration)
	assert.Equal(t, 3, c.MaxConcurrentFetches)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, 1000, c.MaxExistenceEntries)
	assert.Equal(t, 10, c.MaxKeyAttempts)
	assert.Equal(t, 10*time.Second, c.ShutdownGrace)
	assert.Equal(t, 5*time.Second, c.ShutdownKill)
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	c := Config{MaxPerKey: 50, CacheExpiration: time.Hour}
	c.SetDefaults()

	assert.Equal(t, 50, c.MaxPerKey)
	assert.Equal(t, time.Hour, c.CacheExpiration)
	assert.Equal(t, 10, c.MinQueueSize, "untouched fields still get defaults")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("REDDIT_CACHE_DIR", "/var/cache/reddit")
	t.Setenv("REDDIT_MAX_PER_SUBREDDIT", "75")
	t.Setenv("REDDIT_CACHE_EXPIRATION", "5m")
	t.Setenv("REDDIT_WORKERS", "8")

	c, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/reddit", c.DataDir)
	assert.Equal(t, 75, c.MaxPerKey)
	assert.Equal(t, 5*time.Minute, c.CacheExpiration)
	assert.Equal(t, 8, c.Workers)
	assert.Equal(t, 10, c.MinQueueSize, "unset variables fall back to defaults")
}

func TestConfigFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("REDDIT_WORKERS", "many")

	_, err := ConfigFromEnv()
	assert.Error(t, err)
}
