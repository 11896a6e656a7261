package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mvaldes-dev/storecraft-backend/pkg/redis"
)

// ScopePaymentEvents namespaces payment intent event ids in the cache.
const ScopePaymentEvents = "stripe:payment"

// IdempotencyGuard drops redelivered gateway events. The mark is set before
// processing and removed by the caller if processing fails, so a retry can
// get through.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark reports whether the event was already seen and marks it seen.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	// The stored value is only read by humans debugging a stuck event.
	set, err := g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	return g.store.Del(ctx, key)
}
