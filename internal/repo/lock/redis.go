package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const _keyPrefix = "video-orchestrator:lock:"

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes work per key across processes with SET NX PX.
// A holder that outlives ttl loses the lock.
type RedisLocker struct {
	client        redis.UniversalClient
	ttl           time.Duration
	retryInterval time.Duration
	logger        logger.Interface
}

func NewRedisLocker(client redis.UniversalClient, ttl, retryInterval time.Duration, l logger.Interface) *RedisLocker {
	return &RedisLocker{
		client:        client,
		ttl:           ttl,
		retryInterval: retryInterval,
		logger:        l,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := _keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("RedisLocker - Lock - l.client.SetNX: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("RedisLocker - Lock %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() { l.release(ctx, redisKey, token) }, nil
}

// release runs even when the caller's ctx is already gone. On failure the
// key stays held until its TTL expires.
func (l *RedisLocker) release(ctx context.Context, redisKey, token string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.ttl)
	defer cancel()

	if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
		l.logger.Error(err, "RedisLocker - release - releaseScript.Run, key %s held until TTL", redisKey)
	}
}
