package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// defaultLeaseTTL outlives any sweep so a crashed worker frees the lock
// before the next scheduled cycle.
const defaultLeaseTTL = time.Hour

// ErrLeaseLost is returned by Release when the lease expired or was taken by
// another worker while the cycle ran.
var ErrLeaseLost = errors.New("cron lease lost")

// Lock coordinates exclusive cron cycles across worker processes.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type leaseStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock is a lease stored under a single redis key. The value is a
// random token so only the worker that wrote it deletes it.
type RedisLock struct {
	store leaseStore
	key   string
	ttl   time.Duration
	token string
}

// NewRedisLock builds a lease on key. A non-positive ttl uses defaultLeaseTTL.
func NewRedisLock(store leaseStore, key string, ttl time.Duration) (*RedisLock, error) {
	switch {
	case store == nil:
		return nil, errors.New("lease store is required")
	case key == "":
		return nil, errors.New("lease key is required")
	}
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

// Acquire reports whether this worker now holds the lease.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire lease %s: %w", l.key, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release drops the lease if this worker still owns it. Releasing a lease
// that was never acquired is a no-op.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""

	current, err := l.store.Get(ctx, l.key)
	switch {
	case pkgredis.IsMiss(err):
		return ErrLeaseLost
	case err != nil:
		return fmt.Errorf("read lease %s: %w", l.key, err)
	case current != token:
		return ErrLeaseLost
	}

	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lease %s: %w", l.key, err)
	}
	return nil
}
