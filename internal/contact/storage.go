package contact

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "contactFormCooldown:"

// Storage persists the end of a visitor's cooldown.
type Storage interface {
	Load(ctx context.Context, visitor string) (time.Time, bool, error)
	Save(ctx context.Context, visitor string, end time.Time, ttl time.Duration) error
	// Reserve stores end only if no cooldown is stored, reporting whether it did.
	Reserve(ctx context.Context, visitor string, end time.Time, ttl time.Duration) (bool, error)
	Clear(ctx context.Context, visitor string) error
}

// RedisStorage keeps each cooldown end as epoch milliseconds under
// contactFormCooldown:<visitor>, expiring with the cooldown.
type RedisStorage struct {
	rdb *redis.Client
}

func NewRedisStorage(rdb *redis.Client) *RedisStorage {
	return &RedisStorage{rdb: rdb}
}

func key(visitor string) string {
	return keyPrefix + visitor
}

// Load returns the stored end. A missing or unreadable value reports false.
func (s *RedisStorage) Load(ctx context.Context, visitor string) (time.Time, bool, error) {
	raw, err := s.rdb.Get(ctx, key(visitor)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (s *RedisStorage) Save(ctx context.Context, visitor string, end time.Time, ttl time.Duration) error {
	return s.rdb.Set(ctx, key(visitor), strconv.FormatInt(end.UnixMilli(), 10), ttl).Err()
}

// Reserve is SET NX with the cooldown's expiry.
func (s *RedisStorage) Reserve(ctx context.Context, visitor string, end time.Time, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key(visitor), strconv.FormatInt(end.UnixMilli(), 10), ttl).Result()
}

func (s *RedisStorage) Clear(ctx context.Context, visitor string) error {
	return s.rdb.Del(ctx, key(visitor)).Err()
}
