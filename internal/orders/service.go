package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mvaldes-dev/storecraft-backend/internal/basket"
	"github.com/mvaldes-dev/storecraft-backend/internal/catalog"
	"github.com/mvaldes-dev/storecraft-backend/pkg/db/models"
	"github.com/mvaldes-dev/storecraft-backend/pkg/enums"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
	"github.com/mvaldes-dev/storecraft-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service assembles durable orders out of baskets and serves order reads.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, buyerEmail string) ([]models.Order, error)
}

type service struct {
	baskets  basket.Store
	products catalog.ProductCatalog
	delivery catalog.DeliveryCatalog
	repo     Repository
	tx       txRunner
	log      *logger.Logger
	metrics  *metrics.CheckoutMetrics
}

// NewService wires the order assembler. metrics may be nil.
func NewService(
	baskets basket.Store,
	products catalog.ProductCatalog,
	delivery catalog.DeliveryCatalog,
	repo Repository,
	tx txRunner,
	log *logger.Logger,
	m *metrics.CheckoutMetrics,
) (Service, error) {
	if baskets == nil {
		return nil, fmt.Errorf("basket store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if delivery == nil {
		return nil, fmt.Errorf("delivery catalog required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		baskets:  baskets,
		products: products,
		delivery: delivery,
		repo:     repo,
		tx:       tx,
		log:      log,
		metrics:  m,
	}, nil
}

// CreateOrder freezes the basket into a durable order. Prices come from the
// catalogs at call time, never from the basket. The basket must already carry
// a payment reference; submission without one is a sequencing bug on the
// caller's side, not a retryable state.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	ctx = s.log.WithBasketID(ctx, input.BasketID)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	b, err := s.baskets.Get(ctx, input.BasketID)
	if err != nil {
		return nil, err
	}
	if len(b.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket is empty")
	}
	if b.PaymentReference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment not initialized for basket")
	}

	lines := make([]models.OrderLineItem, 0, len(b.Items))
	subtotal := decimal.Zero
	for _, item := range b.Items {
		product, err := s.products.FindProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.OrderLineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			ImageURL:    product.ImageURL,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
		})
		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	method, err := s.delivery.FindDeliveryMethodByID(ctx, input.DeliveryMethodID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		BuyerEmail:       input.BuyerEmail,
		Status:           enums.OrderStatusPending,
		PaymentReference: b.PaymentReference,
		DeliveryMethodID: method.ID,
		DeliveryName:     method.ShortName,
		DeliveryPrice:    method.Price,
		ShipTo:           input.ShipTo,
		Subtotal:         subtotal,
		Items:            lines,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	s.metrics.IncOrderCreated()
	ctx = s.log.WithFields(ctx, map[string]any{
		"order_id":          order.ID.String(),
		"payment_reference": order.PaymentReference,
		"total":             order.Total().StringFixed(2),
	})
	s.log.Info(ctx, "order created")
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, buyerEmail string) ([]models.Order, error) {
	if buyerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer email is required")
	}
	orders, err := s.repo.ListByBuyerEmail(ctx, buyerEmail)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}
