package dictionary

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis is a dictionary stored as a Redis hash named after the dictionary,
// one field per key.
type Redis struct {
	client redis.Cmdable
	name   string
}

func NewRedis(client redis.Cmdable, name string) *Redis {
	return &Redis{client: client, name: name}
}

func (d *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := d.client.HGet(ctx, d.name, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
