// Package cache stores fetched tool output with a time-to-live so repeated
// requests do not hit the documentation sites and APIs again.
package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/logging"
)

// DefaultTTL passed to Set means "use the cache's default TTL"
const DefaultTTL time.Duration = -1

// cleanupInterval controls how often Set purges expired entries: whenever the
// entry count is a multiple of it.
const cleanupInterval = 10

// Cache is a TTL key/value store for tool output
type Cache interface {
	// Get returns the cached data if present and not expired
	Get(key string) (string, bool)

	// Set stores data for ttl, or for the default TTL when ttl is DefaultTTL
	Set(key, data string, ttl time.Duration)

	// Invalidate removes a single entry
	Invalidate(key string)

	// Clear removes every entry
	Clear()

	// Stats reports entry counts
	Stats() Stats

	Close() error
}

// Stats describes cache contents
type Stats struct {
	TotalEntries   int           `json:"total_entries"`
	ActiveEntries  int           `json:"active_entries"`
	ExpiredEntries int           `json:"expired_entries"`
	DefaultTTL     time.Duration `json:"default_ttl"`
}

// Entry is a cached item with its expiry
type Entry struct {
	Data      string
	ExpiresAt time.Time
}

// Expired reports whether the entry has expired at now
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Options configures a cache
type Options struct {
	DefaultTTL time.Duration
	Path       string // SQLite database file; empty selects the in-memory cache
	Logger     *zap.Logger
	Now        func() time.Time
}

// New returns the SQLite cache when a path is configured, otherwise the
// in-memory cache.
func New(opts Options) (Cache, error) {
	if opts.Path != "" {
		return NewSQLite(opts)
	}
	return NewMemory(opts), nil
}

func resolveTTL(ttl, def time.Duration) time.Duration {
	if ttl < 0 {
		return def
	}
	return ttl
}

func normalize(opts Options) Options {
	opts.Logger = logging.OrNop(opts.Logger)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultTTL < 0 {
		opts.DefaultTTL = 0
	}
	return opts
}
