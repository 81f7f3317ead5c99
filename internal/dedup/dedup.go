package dedup

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/logger"
)

const (
	DEFAULT_WINDOW         = 10 * time.Minute
	DEFAULT_SWEEP_INTERVAL = 5 * time.Minute
)

// Config holds configuration for a dedup cache
type Config struct {
	// Window is how long a processed key suppresses repeat deliveries
	Window time.Duration

	// SweepInterval is how often expired entries are proactively evicted
	SweepInterval time.Duration
}

// Cache is an in-memory key→timestamp store that suppresses duplicate
// deliveries of the same logical event within a fixed validity window.
// Entries older than the window are treated as not-processed and lazily
// evicted on access; a background sweep bounds memory between accesses.
//
// Callers must mark a key processed before starting any side-effecting
// work for it, so a duplicate delivery racing the first one becomes a
// no-op instead of a double send.
type Cache struct {
	source string
	config Config
	clock  adapter.Clock

	mu      sync.Mutex
	entries map[string]time.Time
}

// NewCache creates a dedup cache for one source
func NewCache(source string, cfg Config, clock adapter.Clock) *Cache {
	if cfg.Window <= 0 {
		cfg.Window = DEFAULT_WINDOW
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DEFAULT_SWEEP_INTERVAL
	}
	return &Cache{
		source:  source,
		config:  cfg,
		clock:   clock,
		entries: make(map[string]time.Time),
	}
}

// IsProcessed reports whether key was marked within the validity window.
// An expired entry is evicted and reported as not-processed.
func (c *Cache) IsProcessed(key string) bool {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	markedAt, ok := c.entries[key]
	if !ok {
		return false
	}

	if now.Sub(markedAt) >= c.config.Window {
		delete(c.entries, key)
		return false
	}

	return true
}

// MarkProcessed records key as processed at the current time
func (c *Cache) MarkProcessed(key string) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = now
}

// Sweep evicts all expired entries and returns how many were removed
func (c *Cache) Sweep() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, markedAt := range c.entries {
		if now.Sub(markedAt) >= c.config.Window {
			delete(c.entries, key)
			evicted++
		}
	}

	return evicted
}

// Len returns the current number of entries, expired or not
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Run sweeps the cache on a fixed period until ctx is canceled
func (c *Cache) Run(ctx context.Context) {
	ticker := c.clock.NewTicker(c.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Dedup sweeper stopped", zap.String("source", c.source))
			return
		case <-ticker.C():
			evicted := c.Sweep()
			if evicted > 0 {
				logger.DebugCtx(ctx, "Dedup sweep evicted entries",
					zap.String("source", c.source),
					zap.Int("evicted", evicted),
					zap.Int("remaining", c.Len()))
			}
		}
	}
}
