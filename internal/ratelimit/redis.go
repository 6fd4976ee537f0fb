package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"
)

// RedisLimiter shares counters between instances. Each window gets its own
// key which expires together with the window.
type RedisLimiter struct {
	client rueidis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rueidis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := l.now().UnixNano() / int64(l.window)
	redisKey := l.prefix + ":" + key + ":" + strconv.FormatInt(slot, 10)

	count, err := l.client.Do(ctx, l.client.B().Incr().Key(redisKey).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}

	if count == 1 {
		ttl := int64(l.window / time.Second)
		if ttl < 1 {
			ttl = 1
		}
		cmd := l.client.B().Expire().Key(redisKey).Seconds(ttl).Build()
		if err := l.client.Do(ctx, cmd).Error(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	return count <= int64(l.limit), nil
}
