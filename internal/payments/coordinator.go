package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/mvaldes-dev/storecraft-backend/internal/basket"
	"github.com/mvaldes-dev/storecraft-backend/internal/pricing"
	"github.com/mvaldes-dev/storecraft-backend/pkg/db/models"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
	"github.com/mvaldes-dev/storecraft-backend/pkg/metrics"
	"github.com/mvaldes-dev/storecraft-backend/pkg/stripe"
)

// Gateway is the slice of the payment provider the coordinator needs.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64) (*stripe.Intent, error)
	UpdateIntent(ctx context.Context, reference string, amountMinorUnits int64) error
}

// orderStore lets the coordinator displace a stale order when the buyer
// returns to payment after submitting one.
type orderStore interface {
	FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error)
	Delete(ctx context.Context, order *models.Order) error
}

// Coordinator keeps the gateway's view of a basket in sync with its
// catalog-reconciled total. It owns the basket's payment reference: one
// intent per basket, amount refreshed on every pass through payment.
type Coordinator struct {
	baskets    basket.Store
	reconciler *pricing.Reconciler
	gateway    Gateway
	orders     orderStore
	locker     *BasketLocker
	log        *logger.Logger
	metrics    *metrics.CheckoutMetrics
}

// NewCoordinator wires the payment intent coordinator. metrics may be nil.
func NewCoordinator(
	baskets basket.Store,
	reconciler *pricing.Reconciler,
	gateway Gateway,
	orders orderStore,
	locker *BasketLocker,
	log *logger.Logger,
	m *metrics.CheckoutMetrics,
) (*Coordinator, error) {
	if baskets == nil {
		return nil, fmt.Errorf("basket store required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("price reconciler required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if locker == nil {
		return nil, fmt.Errorf("basket locker required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Coordinator{
		baskets:    baskets,
		reconciler: reconciler,
		gateway:    gateway,
		orders:     orders,
		locker:     locker,
		log:        log,
		metrics:    m,
	}, nil
}

// ReconcileIntent reprices the basket from the catalogs and creates or
// updates its payment intent to match. The updated basket, carrying the
// payment reference and client secret, is persisted and returned.
//
// If a live order already holds the basket's payment reference the buyer has
// stepped back after submitting; that order is superseded here so the
// reference can bind to the order they will submit next.
func (c *Coordinator) ReconcileIntent(ctx context.Context, basketID string) (*basket.Basket, error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveDuration("reconcile_intent", time.Since(started))
	}()

	ctx = c.log.WithBasketID(ctx, basketID)

	lease, err := c.locker.Acquire(ctx, basketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire basket lock")
	}
	if lease == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "basket is being processed")
	}
	defer func() {
		if err := lease.Release(ctx); err != nil {
			c.log.Warn(c.log.WithField(ctx, "release_error", err.Error()), "failed to release basket lock")
		}
	}()

	b, err := c.baskets.Get(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if len(b.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket is empty")
	}

	reconciled, err := c.reconciler.Reconcile(ctx, b)
	if err != nil {
		return nil, err
	}

	total := reconciled.Subtotal().Add(reconciled.ShippingPrice)
	amount := pricing.MinorUnits(total)

	if reconciled.PaymentReference == "" {
		intent, err := c.gateway.CreateIntent(ctx, amount)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
		}
		reconciled.PaymentReference = intent.Reference
		reconciled.ClientSecret = intent.ClientSecret
		c.metrics.IncIntent("created")
	} else {
		if err := c.supersedeStaleOrder(ctx, reconciled.PaymentReference); err != nil {
			return nil, err
		}
		if err := c.gateway.UpdateIntent(ctx, reconciled.PaymentReference, amount); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment intent")
		}
		c.metrics.IncIntent("updated")
	}

	if _, err := c.baskets.Put(ctx, reconciled); err != nil {
		return nil, err
	}

	ctx = c.log.WithFields(ctx, map[string]any{
		"payment_reference": reconciled.PaymentReference,
		"amount_minor":      amount,
	})
	c.log.Info(ctx, "payment intent reconciled")
	return reconciled, nil
}

func (c *Coordinator) supersedeStaleOrder(ctx context.Context, reference string) error {
	stale, err := c.orders.FindByPaymentReference(ctx, reference)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check for stale order")
	}
	if stale == nil {
		return nil
	}
	if err := c.orders.Delete(ctx, stale); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "supersede stale order")
	}
	c.log.Info(c.log.WithOrderID(ctx, stale.ID.String()), "superseded stale order")
	return nil
}
