package payments

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldes-dev/storecraft-backend/internal/basket"
	"github.com/mvaldes-dev/storecraft-backend/internal/pricing"
	"github.com/mvaldes-dev/storecraft-backend/pkg/db/models"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
	"github.com/mvaldes-dev/storecraft-backend/pkg/redis"
	"github.com/mvaldes-dev/storecraft-backend/pkg/stripe"
)

type stubBasketStore struct {
	baskets map[string]*basket.Basket
	putErr  error
}

func (s *stubBasketStore) Get(_ context.Context, basketID string) (*basket.Basket, error) {
	b, ok := s.baskets[basketID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	return b, nil
}

func (s *stubBasketStore) Put(_ context.Context, b *basket.Basket) (*basket.Basket, error) {
	if s.putErr != nil {
		return nil, s.putErr
	}
	s.baskets[b.ID] = b
	return b, nil
}

func (s *stubBasketStore) Delete(_ context.Context, basketID string) error {
	delete(s.baskets, basketID)
	return nil
}

type stubProductCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductCatalog) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, nil
}

func (s *stubProductCatalog) ListProducts(_ context.Context) ([]models.Product, error) {
	return nil, nil
}

type stubDeliveryCatalog struct {
	methods map[uuid.UUID]*models.DeliveryMethod
}

func (s *stubDeliveryCatalog) FindDeliveryMethodByID(_ context.Context, id uuid.UUID) (*models.DeliveryMethod, error) {
	m, ok := s.methods[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery method not found")
	}
	return m, nil
}

func (s *stubDeliveryCatalog) ListDeliveryMethods(_ context.Context) ([]models.DeliveryMethod, error) {
	return nil, nil
}

type stubGateway struct {
	created   []int64
	updated   map[string]int64
	createErr error
	updateErr error
}

func newStubGateway() *stubGateway {
	return &stubGateway{updated: map[string]int64{}}
}

func (g *stubGateway) CreateIntent(_ context.Context, amount int64) (*stripe.Intent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, amount)
	return &stripe.Intent{Reference: "pi_new", ClientSecret: "pi_new_secret"}, nil
}

func (g *stubGateway) UpdateIntent(_ context.Context, reference string, amount int64) error {
	if g.updateErr != nil {
		return g.updateErr
	}
	g.updated[reference] = amount
	return nil
}

type stubOrderStore struct {
	byRef   map[string]*models.Order
	deleted []uuid.UUID
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{byRef: map[string]*models.Order{}}
}

func (s *stubOrderStore) FindByPaymentReference(_ context.Context, reference string) (*models.Order, error) {
	return s.byRef[reference], nil
}

func (s *stubOrderStore) Delete(_ context.Context, order *models.Order) error {
	s.deleted = append(s.deleted, order.ID)
	delete(s.byRef, order.PaymentReference)
	return nil
}

// fakeLockStore is an in-memory stand-in for the Redis lock operations.
type fakeLockStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (f *fakeLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLockStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeLockStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeLockStore) BasketLockKey(basketID string) string {
	return "sc:lock:basket:" + basketID
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type fixture struct {
	baskets *stubBasketStore
	gateway *stubGateway
	orders  *stubOrderStore
	locks   *fakeLockStore
	coord   *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	productID := uuid.New()
	methodID := uuid.New()

	baskets := &stubBasketStore{baskets: map[string]*basket.Basket{
		"basket-1": {
			ID: "basket-1",
			Items: []basket.Item{
				{ProductID: productID, UnitPrice: decimal.RequireFromString("1.00"), Quantity: 2},
			},
			DeliveryMethodID: &methodID,
		},
	}}
	products := &stubProductCatalog{products: map[uuid.UUID]*models.Product{
		productID: {ID: productID, Name: "Canvas Tote", Price: decimal.RequireFromString("19.99")},
	}}
	delivery := &stubDeliveryCatalog{methods: map[uuid.UUID]*models.DeliveryMethod{
		methodID: {ID: methodID, ShortName: "Standard", Price: decimal.RequireFromString("5.00")},
	}}

	reconciler, err := pricing.NewReconciler(products, delivery)
	require.NoError(t, err)

	locks := newFakeLockStore()
	locker, err := NewBasketLocker(locks, time.Second)
	require.NoError(t, err)

	gateway := newStubGateway()
	orders := newStubOrderStore()

	coord, err := NewCoordinator(baskets, reconciler, gateway, orders, locker, testLogger(), nil)
	require.NoError(t, err)

	return &fixture{baskets: baskets, gateway: gateway, orders: orders, locks: locks, coord: coord}
}

func TestReconcileIntentCreatesIntentAtCatalogTotal(t *testing.T) {
	f := newFixture(t)

	updated, err := f.coord.ReconcileIntent(context.Background(), "basket-1")
	require.NoError(t, err)

	// 2 x 19.99 + 5.00 shipping = 44.98 -> 4498 minor units.
	require.Len(t, f.gateway.created, 1)
	assert.Equal(t, int64(4498), f.gateway.created[0])

	assert.Equal(t, "pi_new", updated.PaymentReference)
	assert.Equal(t, "pi_new_secret", updated.ClientSecret)
	assert.True(t, updated.ShippingPrice.Equal(decimal.RequireFromString("5.00")))

	persisted := f.baskets.baskets["basket-1"]
	assert.Equal(t, "pi_new", persisted.PaymentReference)
	assert.True(t, persisted.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))

	// Lock released after the pass.
	assert.Empty(t, f.locks.values)
}

func TestReconcileIntentUpdatesExistingIntent(t *testing.T) {
	f := newFixture(t)
	f.baskets.baskets["basket-1"].PaymentReference = "pi_existing"
	f.baskets.baskets["basket-1"].ClientSecret = "pi_existing_secret"

	updated, err := f.coord.ReconcileIntent(context.Background(), "basket-1")
	require.NoError(t, err)

	assert.Empty(t, f.gateway.created)
	assert.Equal(t, int64(4498), f.gateway.updated["pi_existing"])
	assert.Equal(t, "pi_existing", updated.PaymentReference)
	assert.Equal(t, "pi_existing_secret", updated.ClientSecret)
}

func TestReconcileIntentSupersedesStaleOrder(t *testing.T) {
	f := newFixture(t)
	f.baskets.baskets["basket-1"].PaymentReference = "pi_existing"

	staleID := uuid.New()
	f.orders.byRef["pi_existing"] = &models.Order{ID: staleID, PaymentReference: "pi_existing"}

	_, err := f.coord.ReconcileIntent(context.Background(), "basket-1")
	require.NoError(t, err)

	require.Len(t, f.orders.deleted, 1)
	assert.Equal(t, staleID, f.orders.deleted[0])
	assert.Equal(t, int64(4498), f.gateway.updated["pi_existing"])
}

func TestReconcileIntentBasketBusy(t *testing.T) {
	f := newFixture(t)

	_, err := f.locks.SetNX(context.Background(), f.locks.BasketLockKey("basket-1"), "other-owner", time.Second)
	require.NoError(t, err)

	_, err = f.coord.ReconcileIntent(context.Background(), "basket-1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	assert.Empty(t, f.gateway.created)
}

func TestReconcileIntentEmptyBasketRejected(t *testing.T) {
	f := newFixture(t)
	f.baskets.baskets["basket-1"].Items = nil

	_, err := f.coord.ReconcileIntent(context.Background(), "basket-1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Empty(t, f.gateway.created)
	assert.Empty(t, f.locks.values)
}

func TestReconcileIntentGatewayFailureReleasesLock(t *testing.T) {
	f := newFixture(t)
	f.gateway.createErr = errors.New("stripe down")

	_, err := f.coord.ReconcileIntent(context.Background(), "basket-1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	// No reference persisted and the lock is free again.
	assert.Empty(t, f.baskets.baskets["basket-1"].PaymentReference)
	assert.Empty(t, f.locks.values)
}

func TestReconcileIntentBasketNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.ReconcileIntent(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
