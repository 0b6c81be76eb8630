package reddit

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the tunables of the prefetch cache. Zero values are replaced
// by SetDefaults; the defaults match the behavior the provider shipped with.
type Config struct {
	// DataDir is the directory for the persistent Badger store.
	DataDir string `env:"REDDIT_CACHE_DIR"`

	// MaxPerKey caps the number of queued items per subreddit.
	MaxPerKey int `env:"REDDIT_MAX_PER_SUBREDDIT"`

	// MinQueueSize is the low watermark below which a refresh is triggered.
	MinQueueSize int `env:"REDDIT_MIN_QUEUE_SIZE"`

	// CacheExpiration bounds both queue staleness (a refresh is triggered
	// past it) and the age of snapshot items accepted on reload.
	CacheExpiration time.Duration `env:"REDDIT_CACHE_EXPIRATION"`

	// MaxConcurrentFetches limits the sort-order variants fetched in one
	// refresh cycle.
	MaxConcurrentFetches int `env:"REDDIT_MAX_CONCURRENT_FETCHES"`

	// Workers is the size of the background worker pool.
	Workers int `env:"REDDIT_WORKERS"`

	// RequestTimeout is the ceiling on one refresh cycle's wait for its
	// concurrent fetches.
	RequestTimeout time.Duration `env:"REDDIT_REQUEST_TIMEOUT"`

	// MaxExistenceEntries caps the persisted subreddit-existence table;
	// exceeding it clears the whole table.
	MaxExistenceEntries int `env:"REDDIT_MAX_EXISTENCE_ENTRIES"`

	// MaxKeyAttempts caps random candidate draws during key selection.
	MaxKeyAttempts int `env:"REDDIT_MAX_KEY_ATTEMPTS"`

	// ShutdownGrace is how long Cleanup waits for queued background work to
	// drain; ShutdownKill is the second, shorter wait after force-cancel.
	ShutdownGrace time.Duration `env:"REDDIT_SHUTDOWN_GRACE"`
	ShutdownKill  time.Duration `env:"REDDIT_SHUTDOWN_KILL"`
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.DataDir == "" {
		c.DataDir = "reddit_cache"
	}
	if c.MaxPerKey == 0 {
		c.MaxPerKey = 200
	}
	if c.MinQueueSize == 0 {
		c.MinQueueSize = 10
	}
	if c.CacheExpiration == 0 {
		c.CacheExpiration = 10 * time.Minute
	}
	if c.MaxConcurrentFetches == 0 {
		c.MaxConcurrentFetches = 3
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxExistenceEntries == 0 {
		c.MaxExistenceEntries = 1000
	}
	if c.MaxKeyAttempts == 0 {
		c.MaxKeyAttempts = 10
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = 10 * time.Second
	}
	if c.ShutdownKill == 0 {
		c.ShutdownKill = 5 * time.Second
	}
}

// DefaultConfig returns a fully defaulted configuration.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

// ConfigFromEnv builds a Config from REDDIT_* environment variables, with
// defaults applied to anything unset.
func ConfigFromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	c.SetDefaults()
	return c, nil
}
