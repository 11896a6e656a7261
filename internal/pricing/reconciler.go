package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mvaldes-dev/storecraft-backend/internal/basket"
	"github.com/mvaldes-dev/storecraft-backend/internal/catalog"
)

// minorUnitExponent is the decimal shift for two-decimal currencies.
const minorUnitExponent = 2

// Reconciler recomputes basket pricing from the catalogs. Client-supplied
// prices are discarded, never validated against.
type Reconciler struct {
	products catalog.ProductCatalog
	delivery catalog.DeliveryCatalog
}

// NewReconciler builds a price reconciler over the two catalogs.
func NewReconciler(products catalog.ProductCatalog, delivery catalog.DeliveryCatalog) (*Reconciler, error) {
	if products == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if delivery == nil {
		return nil, fmt.Errorf("delivery catalog required")
	}
	return &Reconciler{products: products, delivery: delivery}, nil
}

// Reconcile returns a copy of the basket with every line priced from the
// product catalog and the shipping cost priced from the delivery catalog.
// The input basket is not mutated; callers persist the result.
func (r *Reconciler) Reconcile(ctx context.Context, b *basket.Basket) (*basket.Basket, error) {
	out := *b
	out.Items = make([]basket.Item, len(b.Items))

	for i, item := range b.Items {
		product, err := r.products.FindProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		reconciled := item
		reconciled.UnitPrice = product.Price
		reconciled.ProductName = product.Name
		reconciled.ImageURL = product.ImageURL
		out.Items[i] = reconciled
	}

	if b.DeliveryMethodID != nil {
		method, err := r.delivery.FindDeliveryMethodByID(ctx, *b.DeliveryMethodID)
		if err != nil {
			return nil, err
		}
		out.ShippingPrice = method.Price
	} else {
		out.ShippingPrice = decimal.Zero
	}

	return &out, nil
}

// MinorUnits converts a currency amount into integer minor units, rounding
// half away from zero. The gateway is only ever sent integers.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(minorUnitExponent).Round(0).IntPart()
}
