package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"taxpro/internal/common"
)

// slidingWindowScript keeps one sorted-set member per admitted request, scored
// by Redis server time in milliseconds. Members older than the window are
// trimmed before counting, so a burst cannot straddle a window boundary.
//
// KEYS[1] limiter key, ARGV[1] window ms, ARGV[2] limit, ARGV[3] member.
const slidingWindowScript = `
local t = redis.call("TIME")
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)
local window = tonumber(ARGV[1])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[2]) then
  return 0
end
redis.call("ZADD", KEYS[1], now, ARGV[3])
redis.call("PEXPIRE", KEYS[1], window)
return 1
`

const redisKeyPrefix = "taxpro:ratelimit:"

// RedisLimiter shares sliding-window counters across API replicas, keyed by
// the route scope and caller (for example "connect:<profile>"). It fails open
// when Redis is unreachable so workflow calls never depend on it.
type RedisLimiter struct {
	client  redis.Scripter
	script  *redis.Script
	timeout time.Duration
}

func NewRedisLimiter(client redis.Scripter) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client:  client,
		script:  redis.NewScript(slidingWindowScript),
		timeout: 250 * time.Millisecond,
	}
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if l == nil || key == "" || limit <= 0 || window <= 0 {
		return true
	}
	windowMS := max(window.Milliseconds(), 1)
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	admitted, err := l.script.Run(ctx, l.client, []string{redisKey(key)}, windowMS, limit, common.NewUUID().String()).Int64()
	if err != nil {
		slog.Warn("rate limiter unavailable, admitting request", slog.String("key", key), slog.String("error", err.Error()))
		return true
	}
	return admitted == 1
}
