// Package ratelimiter implements per-subject token buckets in Redis.
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a token bucket shared by every API instance through Redis. A
// nil *Limiter allows everything.
type Limiter struct {
	redis      redis.Scripter
	bucket     string
	capacity   int64
	refillRate float64 // tokens per second
	script     *redis.Script
}

// New returns a limiter that admits perWindow requests per window and per
// subject. It returns nil when rdb is nil or perWindow is not positive, which
// disables limiting.
func New(rdb redis.Scripter, bucket string, perWindow int, window time.Duration) *Limiter {
	if rdb == nil || perWindow <= 0 || window <= 0 {
		return nil
	}
	return &Limiter{
		redis:      rdb,
		bucket:     bucket,
		capacity:   int64(perWindow),
		refillRate: float64(perWindow) / window.Seconds(),
		script:     redis.NewScript(luaTokenBucketScript),
	}
}

// The script returns integers only: Redis truncates Lua numbers, so the wait
// is reported in milliseconds.
const luaTokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])

local tokens = capacity
local last_refill = now

local data = redis.call("HMGET", key, "tokens", "last_refill")
if data[1] ~= false and data[1] ~= nil then
  tokens = tonumber(data[1])
end
if data[2] ~= false and data[2] ~= nil then
  last_refill = tonumber(data[2])
end

local delta = now - last_refill
if delta < 0 then
  delta = 0
end

tokens = math.min(capacity, tokens + delta * refill_rate)

local allowed = 0
local retry_ms = 0
if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
else
  retry_ms = math.ceil((cost - tokens) / refill_rate * 1000)
end

redis.call("HSET", key, "tokens", tostring(tokens), "last_refill", tostring(now))
redis.call("PEXPIRE", key, math.ceil(capacity / refill_rate * 1000))

return { allowed, retry_ms }
`

// Key is the Redis key holding subject's bucket.
func (l *Limiter) Key(subject string) string {
	return "rate:" + l.bucket + ":" + subject
}

// Allow takes one token from subject's bucket. On Redis errors it fails open
// and returns the error so the caller can log it.
func (l *Limiter) Allow(ctx context.Context, subject string) (bool, time.Duration, error) {
	if l == nil {
		return true, 0, nil
	}
	now := float64(time.Now().UnixNano()) / 1e9
	res, err := l.script.Run(ctx, l.redis, []string{l.Key(subject)}, l.capacity, l.refillRate, now, 1).Int64Slice()
	if err != nil {
		slog.Error("redis rate limiter script error", slog.String("bucket", l.bucket), slog.Any("error", err))
		return true, 0, err
	}
	if len(res) < 2 {
		slog.Error("redis rate limiter unexpected script result", slog.String("bucket", l.bucket), slog.Any("result", res))
		return true, 0, nil
	}
	return res[0] == 1, time.Duration(res[1]) * time.Millisecond, nil
}
