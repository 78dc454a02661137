package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the active-chat handle under chat:active:<user>, so the
// selection follows the user across machines.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(addr, userHandle string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{client: rdb, key: "chat:active:" + userHandle}
}

func (r *RedisStore) Load() (string, error) {
	val, err := r.client.Get(context.Background(), r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Save(handle string) error {
	if handle == "" {
		return r.client.Del(context.Background(), r.key).Err()
	}
	return r.client.Set(context.Background(), r.key, handle, 0).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
