package enums

// OrderStatus tracks an order through the payment lifecycle.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusPaymentReceived OrderStatus = "payment_received"
	OrderStatusPaymentFailed   OrderStatus = "payment_failed"
)

// Terminal reports whether the status accepts no further transitions.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusPaymentReceived, OrderStatusPaymentFailed:
		return true
	default:
		return false
	}
}

// Valid reports whether the value is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaymentReceived, OrderStatusPaymentFailed:
		return true
	default:
		return false
	}
}
