package basket

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a single basket line. UnitPrice is whatever the client last sent
// and is advisory only; pricing always re-reads the catalog.
type Item struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Basket is the ephemeral, client-scoped checkout state. The id is
// client-generated and opaque to the backend.
type Basket struct {
	ID               string          `json:"id"`
	Items            []Item          `json:"items"`
	DeliveryMethodID *uuid.UUID      `json:"delivery_method_id,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	ClientSecret     string          `json:"client_secret,omitempty"`
	ShippingPrice    decimal.Decimal `json:"shipping_price"`

	// ExpiresAt is derived from the cache key's remaining TTL on reads.
	// It is never part of the stored payload.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Subtotal sums the line totals at the basket's current prices.
func (b *Basket) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
