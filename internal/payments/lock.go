package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvaldes-dev/storecraft-backend/pkg/redis"
)

const defaultLockTTL = 15 * time.Second

// lockStore defines the Redis operations used by the basket lock.
type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	BasketLockKey(basketID string) string
}

// BasketLocker serializes intent reconciliation per basket. Two concurrent
// reconciliations against the same basket would race the gateway into two
// intents; the loser backs off instead.
type BasketLocker struct {
	client lockStore
	ttl    time.Duration
}

// Lease is a held lock. Release only frees it while this holder still owns it;
// an expired lease is a no-op.
type Lease struct {
	client lockStore
	key    string
	owner  string
}

// NewBasketLocker constructs a Redis-backed per-basket lock.
func NewBasketLocker(client lockStore, ttl time.Duration) (*BasketLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for basket lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &BasketLocker{client: client, ttl: ttl}, nil
}

// Acquire tries to own the basket for the configured TTL. A nil lease with a
// nil error means another reconciliation holds it.
func (l *BasketLocker) Acquire(ctx context.Context, basketID string) (*Lease, error) {
	key := l.client.BasketLockKey(basketID)
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &Lease{client: l.client, key: key, owner: owner}, nil
}

// Release frees the lock only if the owner value still matches.
func (le *Lease) Release(ctx context.Context) error {
	if le == nil || le.owner == "" {
		return nil
	}
	value, err := le.client.Get(ctx, le.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != le.owner {
		return nil
	}
	if err := le.client.Del(ctx, le.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	le.owner = ""
	return nil
}
