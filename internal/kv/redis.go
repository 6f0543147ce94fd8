package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "tidylist:"

// Redis stores slots under a namespaced prefix in a redis instance, for
// setups that want the tracker state to outlive the local machine.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) (*Redis, error) {
	if client == nil {
		return nil, errors.New("kv: nil redis client")
	}
	return &Redis{client: client}, nil
}

func OpenRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedis(redis.NewClient(opts))
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Probe(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, redisPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, redisPrefix+key, value, 0).Err()
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, redisPrefix+key).Err()
}

func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, redisPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), redisPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
