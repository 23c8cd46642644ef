package cache

import (
	"context"
	"errors"
	"time"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix 所有缓存键的前缀
const KeyPrefix = "aitoolhub:cache:"

// Key 返回逻辑键对应的 Redis 键
func Key(name string) string {
	return KeyPrefix + name
}

// RedisCache 用 Redis 过期时间实现同样的 TTL 语义
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient 建立连接并 Ping 一次，失败直接返回
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, common.WrapError(common.ErrCodeCache, "ping redis "+addr, err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss
		}
		return nil, false, common.WrapError(common.ErrCodeCache, "get "+key, err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, payload []byte) error {
	if err := c.client.Set(ctx, Key(key), payload, c.ttl).Err(); err != nil {
		return common.WrapError(common.ErrCodeCache, "set "+key, err)
	}
	return nil
}
