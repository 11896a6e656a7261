package orders

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mvaldes-dev/storecraft-backend/internal/basket"
	"github.com/mvaldes-dev/storecraft-backend/pkg/db/models"
	"github.com/mvaldes-dev/storecraft-backend/pkg/enums"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
	"github.com/mvaldes-dev/storecraft-backend/pkg/types"
)

type stubBasketStore struct {
	baskets map[string]*basket.Basket
}

func (s *stubBasketStore) Get(_ context.Context, basketID string) (*basket.Basket, error) {
	b, ok := s.baskets[basketID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	return b, nil
}

func (s *stubBasketStore) Put(_ context.Context, b *basket.Basket) (*basket.Basket, error) {
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

type stubRepo struct {
	created    []*models.Order
	createErr  error
	byID       map[uuid.UUID]*models.Order
	byRef      map[string]*models.Order
	byEmail    map[string][]models.Order
	statusLog  []models.OrderStatusEvent
	deletedIDs []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byID:    map[uuid.UUID]*models.Order{},
		byRef:   map[string]*models.Order{},
		byEmail: map[string][]models.Order{},
	}
}

func (s *stubRepo) WithTx(*gorm.DB) Repository { return s }

func (s *stubRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = append(s.created, order)
	s.byID[order.ID] = order
	s.byRef[order.PaymentReference] = order
	return order, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubRepo) FindByPaymentReference(_ context.Context, reference string) (*models.Order, error) {
	return s.byRef[reference], nil
}

func (s *stubRepo) ListByBuyerEmail(_ context.Context, email string) ([]models.Order, error) {
	return s.byEmail[email], nil
}

func (s *stubRepo) Delete(_ context.Context, order *models.Order) error {
	s.deletedIDs = append(s.deletedIDs, order.ID)
	delete(s.byID, order.ID)
	delete(s.byRef, order.PaymentReference)
	return nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	if order, ok := s.byID[orderID]; ok {
		order.Status = status
	}
	return nil
}

func (s *stubRepo) AppendStatusEvent(_ context.Context, event *models.OrderStatusEvent) error {
	s.statusLog = append(s.statusLog, *event)
	return nil
}

func (s *stubRepo) ListStatusEvents(_ context.Context, orderID uuid.UUID) ([]models.OrderStatusEvent, error) {
	var events []models.OrderStatusEvent
	for _, e := range s.statusLog {
		if e.OrderID == orderID {
			events = append(events, e)
		}
	}
	return events, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testAddress() types.Address {
	return types.Address{
		Name:       "Jamie Buyer",
		Line1:      "1 Harbour St",
		City:       "Brighton",
		State:      "East Sussex",
		PostalCode: "BN1 1AA",
		Country:    "GB",
	}
}

func newOrderFixture() (*stubBasketStore, *stubProductCatalog, *stubDeliveryCatalog, *stubRepo, CreateOrderInput) {
	productID := uuid.New()
	methodID := uuid.New()

	baskets := &stubBasketStore{baskets: map[string]*basket.Basket{
		"basket-1": {
			ID: "basket-1",
			Items: []basket.Item{
				{ProductID: productID, UnitPrice: decimal.RequireFromString("1.00"), Quantity: 2},
			},
			DeliveryMethodID: &methodID,
			PaymentReference: "pi_abc123",
		},
	}}
	products := &stubProductCatalog{products: map[uuid.UUID]*models.Product{
		productID: {
			ID:       productID,
			Name:     "Canvas Tote",
			ImageURL: "https://cdn.example.com/tote.png",
			Price:    decimal.RequireFromString("19.99"),
		},
	}}
	delivery := &stubDeliveryCatalog{methods: map[uuid.UUID]*models.DeliveryMethod{
		methodID: {
			ID:    methodID,
			ShortName: "Standard",
			Price: decimal.RequireFromString("5.00"),
		},
	}}

	input := CreateOrderInput{
		BasketID:         "basket-1",
		BuyerEmail:       "buyer@example.com",
		DeliveryMethodID: methodID,
		ShipTo:           testAddress(),
	}
	return baskets, products, delivery, newStubRepo(), input
}

func TestCreateOrderSnapshotsCatalogPrices(t *testing.T) {
	baskets, products, delivery, repo, input := newOrderFixture()
	svc, err := NewService(baskets, products, delivery, repo, stubTxRunner{}, testLogger(), nil)
	require.NoError(t, err)

	order, err := svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "pi_abc123", order.PaymentReference)
	assert.Equal(t, "buyer@example.com", order.BuyerEmail)
	assert.Equal(t, "Standard", order.DeliveryName)

	require.Len(t, order.Items, 1)
	// Catalog price wins over whatever the basket carried.
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, "Canvas Tote", order.Items[0].ProductName)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("39.98")))
	assert.True(t, order.Total().Equal(decimal.RequireFromString("44.98")))

	require.Len(t, repo.created, 1)
}

func TestCreateOrderBasketNotFound(t *testing.T) {
	baskets, products, delivery, repo, input := newOrderFixture()
	svc, err := NewService(baskets, products, delivery, repo, stubTxRunner{}, testLogger(), nil)
	require.NoError(t, err)

	input.BasketID = "missing"
	_, err = svc.CreateOrder(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	assert.Empty(t, repo.created)
}

func TestCreateOrderRequiresPaymentReference(t *testing.T) {
	baskets, products, delivery, repo, input := newOrderFixture()
	baskets.baskets["basket-1"].PaymentReference = ""
	svc, err := NewService(baskets, products, delivery, repo, stubTxRunner{}, testLogger(), nil)
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	assert.Empty(t, repo.created)
}

func TestCreateOrderUnknownProductFails(t *testing.T) {
	baskets, products, delivery, repo, input := newOrderFixture()
	baskets.baskets["basket-1"].Items = append(baskets.baskets["basket-1"].Items, basket.Item{
		ProductID: uuid.New(),
		Quantity:  1,
	})
	svc, err := NewService(baskets, products, delivery, repo, stubTxRunner{}, testLogger(), nil)
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	assert.Empty(t, repo.created)
}

func TestCreateOrderUnknownDeliveryMethodFails(t *testing.T) {
	baskets, products, delivery, repo, input := newOrderFixture()
	svc, err := NewService(baskets, products, delivery, repo, stubTxRunner{}, testLogger(), nil)
	require.NoError(t, err)

	input.DeliveryMethodID = uuid.New()
	_, err = svc.CreateOrder(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	assert.Empty(t, repo.created)
}

func TestCreateOrderEmptyBasketRejected(t *testing.T) {
	baskets, products, delivery, repo, input := newOrderFixture()
	baskets.baskets["basket-1"].Items = nil
	svc, err := NewService(baskets, products, delivery, repo, stubTxRunner{}, testLogger(), nil)
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateOrderPersistFailure(t *testing.T) {
	baskets, products, delivery, repo, input := newOrderFixture()
	repo.createErr = errors.New("insert failed")
	svc, err := NewService(baskets, products, delivery, repo, stubTxRunner{}, testLogger(), nil)
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestGetOrderNotFound(t *testing.T) {
	baskets, products, delivery, repo, _ := newOrderFixture()
	svc, err := NewService(baskets, products, delivery, repo, stubTxRunner{}, testLogger(), nil)
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
