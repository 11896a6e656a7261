package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldes-dev/storecraft-backend/internal/basket"
	"github.com/mvaldes-dev/storecraft-backend/pkg/db/models"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
)

type stubProductCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductCatalog) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubProductCatalog) ListProducts(context.Context) ([]models.Product, error) {
	return nil, nil
}

type stubDeliveryCatalog struct {
	methods map[uuid.UUID]*models.DeliveryMethod
}

func (s *stubDeliveryCatalog) FindDeliveryMethodByID(_ context.Context, id uuid.UUID) (*models.DeliveryMethod, error) {
	if m, ok := s.methods[id]; ok {
		return m, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery method not found")
}

func (s *stubDeliveryCatalog) ListDeliveryMethods(context.Context) ([]models.DeliveryMethod, error) {
	return nil, nil
}

func TestReconcileOverwritesClientPrices(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	deliveryID := uuid.New()

	products := &stubProductCatalog{products: map[uuid.UUID]*models.Product{
		productID: {ID: productID, Name: "Keyboard", Price: decimal.RequireFromString("19.99"), ImageURL: "/img/kb.png"},
	}}
	delivery := &stubDeliveryCatalog{methods: map[uuid.UUID]*models.DeliveryMethod{
		deliveryID: {ID: deliveryID, ShortName: "Standard", Price: decimal.RequireFromString("5.00")},
	}}

	r, err := NewReconciler(products, delivery)
	require.NoError(t, err)

	in := &basket.Basket{
		ID: "basket-1",
		Items: []basket.Item{
			// client claims a lower price; it must be ignored
			{ProductID: productID, ProductName: "stale name", UnitPrice: decimal.RequireFromString("0.01"), Quantity: 2},
		},
		DeliveryMethodID: &deliveryID,
	}

	out, err := r.Reconcile(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, out.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, "Keyboard", out.Items[0].ProductName)
	assert.Equal(t, "/img/kb.png", out.Items[0].ImageURL)
	assert.True(t, out.ShippingPrice.Equal(decimal.RequireFromString("5.00")))

	// input basket untouched
	assert.True(t, in.Items[0].UnitPrice.Equal(decimal.RequireFromString("0.01")))
}

func TestReconcileUnknownProductFails(t *testing.T) {
	t.Parallel()

	r, err := NewReconciler(&stubProductCatalog{products: map[uuid.UUID]*models.Product{}}, &stubDeliveryCatalog{})
	require.NoError(t, err)

	in := &basket.Basket{
		ID:    "basket-2",
		Items: []basket.Item{{ProductID: uuid.New(), Quantity: 1}},
	}
	_, err = r.Reconcile(context.Background(), in)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestReconcileUnknownDeliveryMethodFails(t *testing.T) {
	t.Parallel()

	r, err := NewReconciler(&stubProductCatalog{products: map[uuid.UUID]*models.Product{}}, &stubDeliveryCatalog{methods: map[uuid.UUID]*models.DeliveryMethod{}})
	require.NoError(t, err)

	missing := uuid.New()
	in := &basket.Basket{ID: "basket-3", DeliveryMethodID: &missing}
	_, err = r.Reconcile(context.Background(), in)
	require.Error(t, err)
}

func TestReconcileNoDeliveryMethodZeroShipping(t *testing.T) {
	t.Parallel()

	r, err := NewReconciler(&stubProductCatalog{products: map[uuid.UUID]*models.Product{}}, &stubDeliveryCatalog{})
	require.NoError(t, err)

	out, err := r.Reconcile(context.Background(), &basket.Basket{ID: "basket-4", ShippingPrice: decimal.RequireFromString("9.99")})
	require.NoError(t, err)
	assert.True(t, out.ShippingPrice.IsZero())
}

func TestMinorUnits(t *testing.T) {
	t.Parallel()

	// 19.99 * 2 + 5.00 = 44.98 -> 4498
	total := decimal.RequireFromString("19.99").Mul(decimal.NewFromInt(2)).Add(decimal.RequireFromString("5.00"))
	assert.Equal(t, int64(4498), MinorUnits(total))

	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
	assert.Equal(t, int64(100), MinorUnits(decimal.RequireFromString("0.995")))
	assert.Equal(t, int64(99), MinorUnits(decimal.RequireFromString("0.994")))
}
