package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
`

// SQLite is a cache persisted to a SQLite database so entries survive
// restarts. Storage failures are logged and treated as misses.
type SQLite struct {
	db         *sql.DB
	defaultTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewSQLite opens (creating if needed) the cache database at opts.Path
func NewSQLite(opts Options) (*SQLite, error) {
	opts = normalize(opts)
	if opts.Path == "" {
		return nil, errors.New("sqlite cache requires a path")
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database %s: %w", opts.Path, err)
	}
	// A single connection serialises writers; the cache is small and local.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	opts.Logger.Debug("SQLite cache initialized",
		zap.String("path", opts.Path),
		zap.Duration("default_ttl", opts.DefaultTTL))

	return &SQLite{
		db:         db,
		defaultTTL: opts.DefaultTTL,
		logger:     opts.Logger,
		now:        opts.Now,
	}, nil
}

// Get returns the cached data if present and not expired
func (s *SQLite) Get(key string) (string, bool) {
	var data string
	var expiresAt int64
	err := s.db.QueryRow(`SELECT data, expires_at FROM cache_entries WHERE key = ?`, key).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("Cache miss", zap.String("key", key))
		return "", false
	}
	if err != nil {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}

	entry := Entry{Data: data, ExpiresAt: time.Unix(0, expiresAt)}
	if entry.Expired(s.now()) {
		s.logger.Debug("Cache expired", zap.String("key", key))
		if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
			s.logger.Warn("Cache delete failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}

	s.logger.Debug("Cache hit", zap.String("key", key))
	return entry.Data, true
}

// Set stores data with a TTL
func (s *SQLite) Set(key, data string, ttl time.Duration) {
	ttl = resolveTTL(ttl, s.defaultTTL)
	expiresAt := s.now().Add(ttl).UnixNano()

	_, err := s.db.Exec(`INSERT INTO cache_entries (key, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		key, data, expiresAt)
	if err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		return
	}
	if count%cleanupInterval == 0 {
		s.cleanupExpired()
	}
}

// Invalidate removes a single entry
func (s *SQLite) Invalidate(key string) {
	res, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key)
	if err != nil {
		s.logger.Warn("Cache invalidation failed", zap.String("key", key), zap.Error(err))
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Debug("Cache invalidation attempted for non-existent key", zap.String("key", key))
		return
	}
	s.logger.Debug("Cache invalidated", zap.String("key", key))
}

// Clear removes every entry
func (s *SQLite) Clear() {
	res, err := s.db.Exec(`DELETE FROM cache_entries`)
	if err != nil {
		s.logger.Warn("Cache clear failed", zap.Error(err))
		return
	}
	n, _ := res.RowsAffected()
	s.logger.Info("Cache cleared", zap.Int64("removed", n))
}

// Stats reports entry counts
func (s *SQLite) Stats() Stats {
	stats := Stats{DefaultTTL: s.defaultTTL}
	now := s.now().UnixNano()

	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM cache_entries`, now).Scan(&stats.TotalEntries, &stats.ExpiredEntries)
	if err != nil {
		s.logger.Warn("Cache stats failed", zap.Error(err))
		return stats
	}
	stats.ActiveEntries = stats.TotalEntries - stats.ExpiredEntries
	return stats
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) cleanupExpired() {
	res, err := s.db.Exec(`DELETE FROM cache_entries WHERE expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		s.logger.Warn("Cache cleanup failed", zap.Error(err))
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Debug("Cleaned up expired cache entries", zap.Int64("removed", n))
	}
}

var _ Cache = (*SQLite)(nil)
