package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mvaldes-dev/storecraft-backend/pkg/enums"
	"github.com/mvaldes-dev/storecraft-backend/pkg/types"
)

// Order is the durable, price-frozen result of a checkout submission.
// Delivery name/price and line prices are snapshots taken at creation time;
// later catalog edits never touch them. Soft deletion marks an order as
// superseded so the payment reference can be rebound to a newer order.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BuyerEmail       string            `gorm:"column:buyer_email;not null" json:"buyer_email"`
	Status           enums.OrderStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	PaymentReference string            `gorm:"column:payment_reference;not null" json:"payment_reference"`
	DeliveryMethodID uuid.UUID         `gorm:"column:delivery_method_id;type:uuid;not null" json:"delivery_method_id"`
	DeliveryName     string            `gorm:"column:delivery_name;not null" json:"delivery_name"`
	DeliveryPrice    decimal.Decimal   `gorm:"column:delivery_price;type:numeric(18,2);not null" json:"delivery_price"`
	ShipTo           types.Address     `gorm:"embedded;embeddedPrefix:ship_to_" json:"ship_to"`
	Subtotal         decimal.Decimal   `gorm:"column:subtotal;type:numeric(18,2);not null" json:"subtotal"`
	Items            []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt    `gorm:"column:deleted_at;index" json:"-"`
}

// Total is computed from its inputs on demand and never stored.
func (o *Order) Total() decimal.Decimal {
	return o.Subtotal.Add(o.DeliveryPrice)
}

// OrderLineItem captures the product snapshot inside an order.
type OrderLineItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	ImageURL    string          `gorm:"column:image_url;not null;default:''" json:"image_url"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(18,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// OrderStatusEvent is the append-only audit row written on every status write,
// including idempotent re-applications.
type OrderStatusEvent struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID         `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	FromStatus     enums.OrderStatus `gorm:"column:from_status;not null" json:"from_status"`
	ToStatus       enums.OrderStatus `gorm:"column:to_status;not null" json:"to_status"`
	GatewayEventID *string           `gorm:"column:gateway_event_id" json:"gateway_event_id,omitempty"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
