package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments the counter and sets the window TTL only on first
// increment, so the window never slides on subsequent hits.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// RedisStore backs the fixed-window limiter with shared Redis counters, so
// limits hold across replicas of the service.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store using the given client. The prefix namespaces
// limiter keys within the database; empty defaults to "ratelimit".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrScript.Run(ctx, s.client, []string{s.prefix + ":" + key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, err
	}

	count, _ := res[0].(int64)
	ttlMillis, _ := res[1].(int64)
	return count, time.Duration(ttlMillis) * time.Millisecond, nil
}
