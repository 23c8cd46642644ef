package cache

import (
	"context"
	"sync"
	"time"

	"aitool-hub/internal/domain"
)

// MemoryCache 进程内的 TTL 缓存：单一键空间，过期条目在读取时惰性删除，无容量上限
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]domain.CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	return &MemoryCache{
		entries: make(map[string]domain.CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock 便于测试注入当前时间
func (c *MemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.Valid(c.now(), c.ttl) {
		delete(c.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(entry.Payload))
	copy(out, entry.Payload)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]byte, len(payload))
	copy(stored, payload)
	c.entries[key] = domain.CacheEntry{Payload: stored, WrittenAt: c.now()}
	return nil
}

// Len 当前条目数 (包含尚未被读取淘汰的过期条目)
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
