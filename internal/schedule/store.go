package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// TimerStore is the expiring key/value store backing deferred dispatch.
// Setting a key arms a timer; deleting it disarms the timer. Deletion is
// best-effort: a delete racing a near-simultaneous expiry may lose, which the
// dispatch worker tolerates by re-checking the post before publishing.
type TimerStore interface {
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteMatching(ctx context.Context, substring string) (int, error)
}

// The stored value is never parsed; every dispatch parameter rides in the key
// itself plus a fresh read of the post record at fire time.
const placeholderValue = "scheduled"

type redisTimerStore struct {
	rdb *redis.Client
}

func NewRedisTimerStore(rdb *redis.Client) TimerStore {
	return &redisTimerStore{rdb: rdb}
}

func (s *redisTimerStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	if value == "" {
		value = placeholderValue
	}
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Info(err.Error())
		return err
	}
	slog.Info("timer key set", "key", key, "ttl", ttl)
	return nil
}

func (s *redisTimerStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		slog.Info(err.Error())
		return err
	}
	slog.Info("timer key deleted", "key", key)
	return nil
}

func (s *redisTimerStore) DeleteMatching(ctx context.Context, substring string) (int, error) {
	var deleted int
	iter := s.rdb.Scan(ctx, 0, "*"+substring+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Info(err.Error())
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		slog.Info(err.Error())
		return deleted, err
	}
	slog.Info("timer keys deleted", "pattern", substring, "count", deleted)
	return deleted, nil
}
