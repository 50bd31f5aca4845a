package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Memory is an in-process cache. It is safe for concurrent use.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]Entry
	defaultTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewMemory creates an empty in-memory cache
func NewMemory(opts Options) *Memory {
	opts = normalize(opts)
	opts.Logger.Debug("Memory cache initialized", zap.Duration("default_ttl", opts.DefaultTTL))
	return &Memory{
		entries:    make(map[string]Entry),
		defaultTTL: opts.DefaultTTL,
		logger:     opts.Logger,
		now:        opts.Now,
	}
}

// Get returns the cached data if present and not expired
func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		m.logger.Debug("Cache miss", zap.String("key", key))
		return "", false
	}

	if entry.Expired(m.now()) {
		m.logger.Debug("Cache expired", zap.String("key", key))
		delete(m.entries, key)
		return "", false
	}

	m.logger.Debug("Cache hit", zap.String("key", key))
	return entry.Data, true
}

// Set stores data with a TTL
func (m *Memory) Set(key, data string, ttl time.Duration) {
	ttl = resolveTTL(ttl, m.defaultTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = Entry{Data: data, ExpiresAt: m.now().Add(ttl)}
	m.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))

	if len(m.entries)%cleanupInterval == 0 {
		m.cleanupExpiredLocked()
	}
}

// Invalidate removes a single entry
func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		m.logger.Debug("Cache invalidation attempted for non-existent key", zap.String("key", key))
		return
	}
	delete(m.entries, key)
	m.logger.Debug("Cache invalidated", zap.String("key", key))
}

// Clear removes every entry
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := len(m.entries)
	m.entries = make(map[string]Entry)
	m.logger.Info("Cache cleared", zap.Int("removed", count))
}

// Stats reports entry counts
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	expired := 0
	for _, entry := range m.entries {
		if entry.Expired(now) {
			expired++
		}
	}

	return Stats{
		TotalEntries:   len(m.entries),
		ActiveEntries:  len(m.entries) - expired,
		ExpiredEntries: expired,
		DefaultTTL:     m.defaultTTL,
	}
}

// Close is a no-op for the in-memory cache
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) cleanupExpiredLocked() {
	now := m.now()
	removed := 0
	for key, entry := range m.entries {
		if entry.Expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("Cleaned up expired cache entries", zap.Int("removed", removed))
	}
}

var _ Cache = (*Memory)(nil)
