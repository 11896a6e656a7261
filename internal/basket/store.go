package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	BasketKey(basketID string) string
}

// Store reads and writes baskets against the ephemeral cache.
type Store interface {
	Get(ctx context.Context, basketID string) (*Basket, error)
	Put(ctx context.Context, b *Basket) (*Basket, error)
	Delete(ctx context.Context, basketID string) error
}

type store struct {
	cache redisStore
	ttl   time.Duration
}

// NewStore builds a Redis-backed basket store with the configured TTL.
func NewStore(cache redisStore, ttl time.Duration) (Store, error) {
	if cache == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("basket ttl must be positive")
	}
	return &store{cache: cache, ttl: ttl}, nil
}

func (s *store) Get(ctx context.Context, basketID string) (*Basket, error) {
	if basketID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}
	raw, err := s.cache.Get(ctx, s.cache.BasketKey(basketID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read basket")
	}
	var b Basket
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode basket")
	}
	b.ID = basketID
	// Redis reports negative durations for missing or persistent keys;
	// only a real remaining lifetime becomes an expiry.
	if remaining, err := s.cache.TTL(ctx, s.cache.BasketKey(basketID)); err == nil && remaining > 0 {
		expiresAt := time.Now().Add(remaining).UTC()
		b.ExpiresAt = &expiresAt
	}
	return &b, nil
}

func (s *store) Put(ctx context.Context, b *Basket) (*Basket, error) {
	if b == nil || b.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}
	snapshot := *b
	snapshot.ExpiresAt = nil
	payload, err := json.Marshal(&snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode basket")
	}
	if err := s.cache.Set(ctx, s.cache.BasketKey(b.ID), string(payload), s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write basket")
	}
	expiresAt := time.Now().Add(s.ttl).UTC()
	b.ExpiresAt = &expiresAt
	return b, nil
}

func (s *store) Delete(ctx context.Context, basketID string) error {
	if basketID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}
	if err := s.cache.Del(ctx, s.cache.BasketKey(basketID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete basket")
	}
	return nil
}
