package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCmdable is the subset of redis.Cmdable the backend uses.
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisBackend stores keys with SET/GET/DEL. A non-zero TTL is applied to every write.
type RedisBackend struct {
	rdb redisCmdable
	ttl time.Duration
}

func NewRedisBackend(rdb redisCmdable, ttl time.Duration) *RedisBackend {
	return &RedisBackend{rdb: rdb, ttl: ttl}
}

// NewRedisClient builds a go-redis client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, key, value, r.ttl).Err()
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
