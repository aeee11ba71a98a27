package sink

import (
	"context"

	"github.com/matgreaves/evtrace/connect"
	"github.com/matgreaves/evtrace/connect/redisx"
	"github.com/redis/go-redis/v9"
)

// RedisTransport publishes each event record to a fixed Redis pub/sub
// channel.
type RedisTransport struct {
	client  *redis.Client
	channel string
}

// NewRedisTransport connects to ep and publishes on channel.
func NewRedisTransport(ep connect.Endpoint, channel string) (*RedisTransport, error) {
	client, err := redisx.Connect(ep)
	if err != nil {
		return nil, err
	}
	return &RedisTransport{client: client, channel: channel}, nil
}

func (t *RedisTransport) Send(ctx context.Context, record []byte) error {
	return t.client.Publish(ctx, t.channel, record).Err()
}

func (t *RedisTransport) Close() error { return t.client.Close() }
