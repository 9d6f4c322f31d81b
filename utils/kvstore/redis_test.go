package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore("not-a-redis-url")
	assert.Error(t, err)
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	_, err := NewRedisStore("redis://127.0.0.1:1/0?dial_timeout=100ms&max_retries=-1")
	assert.Error(t, err)
}

func TestRedisStoreSurfacesOutage(t *testing.T) {
	store := NewRedisStoreFromClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer store.Close()

	ctx := context.Background()
	_, err := store.Exists(ctx, "k")
	assert.Error(t, err)
	_, err = store.Increment(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, "k", "v", time.Minute))
}
