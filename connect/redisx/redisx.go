// Package redisx provides the Redis client used by a network sink's
// pub/sub transport mode (sink/network_redis.go): events are published to
// a channel rather than shipped over a raw socket or HTTP.
//
//	w, _ := connect.ParseWiring(ctx)
//	rdb, err := redisx.Connect(w.Egress("redis"))
package redisx

import (
	"github.com/matgreaves/evtrace/connect"
	"github.com/redis/go-redis/v9"
)

// Connect returns a Redis client from a resolved endpoint, using
// REDIS_URL if set, falling back to host:port with database 0.
func Connect(ep connect.Endpoint) (*redis.Client, error) {
	if raw, ok := connect.RedisURL.Get(ep); ok && raw != "" {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: ep.Addr()}), nil
}
