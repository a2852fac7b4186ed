package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryCache implements CacheBackend with a mutex-guarded map.
// Expired entries are dropped lazily on read and swept periodically; when the
// sweep finds more than maxEntries live entries, the soonest-expiring are
// evicted first.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	maxEntries int
	stopCh     chan struct{}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory cache backend and starts its sweeper.
func NewMemoryCache(maxEntries int, sweepInterval time.Duration) *MemoryCache {
	mc := &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		stopCh:     make(chan struct{}),
	}
	go mc.sweepLoop(sweepInterval)
	return mc
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) GetMultiple(ctx context.Context, keys []string) (map[string][]byte, error) {
	now := time.Now()
	result := make(map[string][]byte)
	m.mu.RLock()
	for _, key := range keys {
		if entry, ok := m.entries[key]; ok && now.Before(entry.expiresAt) {
			result[key] = entry.value
		}
	}
	m.mu.RUnlock()
	return result, nil
}

func (m *MemoryCache) SetMultiple(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)
	m.mu.Lock()
	for key, value := range items {
		m.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Close() error {
	close(m.stopCh)
	return nil
}

func (m *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *MemoryCache) sweep() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	type liveEntry struct {
		key       string
		expiresAt time.Time
	}
	var live []liveEntry
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
			continue
		}
		live = append(live, liveEntry{key, entry.expiresAt})
	}

	if m.maxEntries > 0 && len(live) > m.maxEntries {
		sort.Slice(live, func(i, j int) bool {
			return live[i].expiresAt.Before(live[j].expiresAt)
		})
		for _, entry := range live[:len(live)-m.maxEntries] {
			delete(m.entries, entry.key)
		}
	}
}
