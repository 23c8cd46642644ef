package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Hour)
	c.SetClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "trending_tools", []byte(`[{"name":"A"}]`)))

	now = now.Add(59 * time.Minute)
	got, ok, err := c.Get(ctx, "trending_tools")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"name":"A"}]`, string(got))

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "trending_tools")
	require.NoError(t, err)
	assert.False(t, ok, "expired at exactly one hour")
	assert.Equal(t, 0, c.Len(), "expired entry removed on read")
}

func TestMemoryCache_CopiesPayload(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	payload := []byte(`[1]`)
	require.NoError(t, c.Set(ctx, "k", payload))
	payload[1] = '9'

	got, ok, _ := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, `[1]`, string(got))
}

func TestMemoryCache_Miss(t *testing.T) {
	_, ok, err := NewMemoryCache(time.Hour).Get(context.Background(), "nope")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewRedisCache(client, time.Hour)

	require.NoError(t, c.Set(ctx, "latest_tools", []byte(`[]`)))
	assert.True(t, mr.Exists(Key("latest_tools")))
	assert.Equal(t, time.Hour, mr.TTL(Key("latest_tools")))

	got, ok, err := c.Get(ctx, "latest_tools")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(got))

	mr.FastForward(time.Hour)
	_, ok, err = c.Get(ctx, "latest_tools")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Error(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	c := NewRedisCache(client, time.Hour)
	mr.Close()

	_, ok, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(context.Background(), "k", []byte("v")))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	_ = client.Close()

	_, err = NewRedisClient(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
