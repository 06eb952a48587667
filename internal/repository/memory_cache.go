package repository

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is how often Set removes expired entries from a MemoryCache.
const DefaultSweepInterval = time.Minute

type memoryEntry struct {
	value   string
	expires time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// MemoryCache is a process-local CacheRepository. Expired entries are dropped when read and
// swept from Set at most once per sweep interval, so unread keys do not accumulate.
type MemoryCache struct {
	mu         sync.RWMutex
	data       map[string]memoryEntry
	now        func() time.Time
	sweepEvery time.Duration
	lastSweep  time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data:       make(map[string]memoryEntry),
		now:        time.Now,
		sweepEvery: DefaultSweepInterval,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	now := m.now()
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if e.expired(now) {
		m.evict(key, now)
		return "", false
	}
	return e.value, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	now := m.now()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) >= m.sweepEvery {
		m.sweepLocked(now)
	}
	m.data[key] = e
	return nil
}

// evict deletes key only if it is still expired; a concurrent Set may have replaced it
// since the read lock was released.
func (m *MemoryCache) evict(key string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.data[key]; ok && cur.expired(now) {
		delete(m.data, key)
	}
}

// Sweep removes every expired entry and returns how many were removed.
func (m *MemoryCache) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(now)
}

func (m *MemoryCache) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
			removed++
		}
	}
	m.lastSweep = now
	return removed
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
