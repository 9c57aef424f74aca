package ratelimit

import (
	"time"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const keyPrefix = "ratelimit:fees"

// NewStore returns a Redis backed store shared by all replicas, or an in-process
// store when client is nil.
func NewStore(client *redis.Client) (limiter.Store, error) {
	opts := limiter.StoreOptions{Prefix: keyPrefix, CleanUpInterval: time.Minute}
	if client == nil {
		return memory.NewStoreWithOptions(opts), nil
	}
	return limiterredis.NewStoreWithOptions(client, opts)
}

// NewLimiter allows perMinute requests per key and minute. A non-positive quota
// disables limiting.
func NewLimiter(store limiter.Store, perMinute int64) *limiter.Limiter {
	if store == nil || perMinute <= 0 {
		return nil
	}
	return limiter.New(store, limiter.Rate{Period: time.Minute, Limit: perMinute})
}
