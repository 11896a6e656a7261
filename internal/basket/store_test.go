package basket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/redis"
)

type fakeCache struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	val, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return val, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
		delete(f.ttls, key)
	}
	return nil
}

func (f *fakeCache) TTL(_ context.Context, key string) (time.Duration, error) {
	ttl, ok := f.ttls[key]
	if !ok {
		return -2 * time.Second, nil
	}
	return ttl, nil
}

func (f *fakeCache) BasketKey(basketID string) string {
	return "sc:basket:" + basketID
}

func TestStoreRoundTrip(t *testing.T) {
	cache := newFakeCache()
	store, err := NewStore(cache, 30*24*time.Hour)
	require.NoError(t, err)

	deliveryID := uuid.New()
	in := &Basket{
		ID: "basket-1",
		Items: []Item{
			{ProductID: uuid.New(), ProductName: "Keyboard", UnitPrice: decimal.RequireFromString("19.99"), Quantity: 2},
		},
		DeliveryMethodID: &deliveryID,
		PaymentReference: "pi_123",
		ClientSecret:     "pi_123_secret",
		ShippingPrice:    decimal.RequireFromString("5.00"),
	}

	_, err = store.Put(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, cache.ttls["sc:basket:basket-1"])

	out, err := store.Get(context.Background(), "basket-1")
	require.NoError(t, err)
	assert.Equal(t, "basket-1", out.ID)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, "pi_123", out.PaymentReference)
	require.NotNil(t, out.DeliveryMethodID)
	assert.Equal(t, deliveryID, *out.DeliveryMethodID)
}

func TestStoreGetReportsExpiry(t *testing.T) {
	cache := newFakeCache()
	store, err := NewStore(cache, 48*time.Hour)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), &Basket{ID: "basket-1"})
	require.NoError(t, err)
	// The expiry is derived on reads, never persisted with the basket.
	assert.NotContains(t, cache.values["sc:basket:basket-1"], "expires_at")

	out, err := store.Get(context.Background(), "basket-1")
	require.NoError(t, err)
	require.NotNil(t, out.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), *out.ExpiresAt, time.Minute)
}

func TestStoreGetMissingReturnsNotFound(t *testing.T) {
	store, err := NewStore(newFakeCache(), time.Hour)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestStoreDeleteRemovesBasket(t *testing.T) {
	cache := newFakeCache()
	store, err := NewStore(cache, time.Hour)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), &Basket{ID: "gone"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), "gone"))

	_, err = store.Get(context.Background(), "gone")
	require.Error(t, err)
}

func TestBasketSubtotal(t *testing.T) {
	b := &Basket{Items: []Item{
		{UnitPrice: decimal.RequireFromString("19.99"), Quantity: 2},
		{UnitPrice: decimal.RequireFromString("4.50"), Quantity: 1},
	}}
	assert.True(t, b.Subtotal().Equal(decimal.RequireFromString("44.48")))
}
