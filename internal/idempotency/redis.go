package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// LockTTL bounds how long one request may hold a key in Redis before a
// retry is allowed to run again.
const LockTTL = 2 * time.Minute

// RedisStore keeps completed responses as JSON values with a TTL. The
// in-flight reservation is a redislock lock on the same key.
type RedisStore struct {
	rdb    *redis.Client
	locker *redislock.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore returns a store over rdb. A non-positive ttl uses DefaultTTL.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		rdb:    rdb,
		locker: redislock.New(rdb),
		ttl:    ttl,
		prefix: "idempotency:",
	}
}

type redisRecord struct {
	Fingerprint string   `json:"fingerprint"`
	Response    Response `json:"response"`
}

func (s *RedisStore) valueKey(scope, key string) string {
	return s.prefix + scope + ":" + key
}

func (s *RedisStore) lockKey(scope, key string) string {
	return s.prefix + "lock:" + scope + ":" + key
}

func (s *RedisStore) lookup(ctx context.Context, scope, key, fingerprint string) (*Lease, error) {
	val, err := s.rdb.Get(ctx, s.valueKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading idempotency key: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("decoding idempotency record: %w", err)
	}
	if rec.Fingerprint != fingerprint {
		return nil, ErrKeyReused
	}
	return &Lease{Replay: &rec.Response}, nil
}

// Begin implements Store.
func (s *RedisStore) Begin(ctx context.Context, scope, key, fingerprint string) (*Lease, error) {
	if lease, err := s.lookup(ctx, scope, key, fingerprint); lease != nil || err != nil {
		return lease, err
	}

	lock, err := s.locker.Obtain(ctx, s.lockKey(scope, key), LockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("locking idempotency key: %w", err)
	}

	// The previous holder may have completed between lookup and Obtain.
	if lease, err := s.lookup(ctx, scope, key, fingerprint); lease != nil || err != nil {
		_ = lock.Release(ctx)
		return lease, err
	}

	return &Lease{
		complete: func(ctx context.Context, resp Response) error {
			defer lock.Release(ctx)
			b, err := json.Marshal(redisRecord{Fingerprint: fingerprint, Response: resp})
			if err != nil {
				return fmt.Errorf("encoding idempotency record: %w", err)
			}
			if err := s.rdb.Set(ctx, s.valueKey(scope, key), b, s.ttl).Err(); err != nil {
				return fmt.Errorf("storing idempotent response: %w", err)
			}
			return nil
		},
		release: func(ctx context.Context) error {
			if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				return fmt.Errorf("releasing idempotency key: %w", err)
			}
			return nil
		},
	}, nil
}
