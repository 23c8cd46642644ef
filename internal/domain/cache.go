package domain

import "time"

// DefaultCacheTTL 所有缓存条目共用的固定有效期
const DefaultCacheTTL = time.Hour

// CacheEntry 缓存条目：负载 + 写入时间
type CacheEntry struct {
	Payload   []byte    `json:"payload"`
	WrittenAt time.Time `json:"writtenAt"`
}

// Valid now - WrittenAt < ttl 时有效，否则视为不存在
func (e CacheEntry) Valid(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.WrittenAt) < ttl
}
