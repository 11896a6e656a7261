package orders

import (
	"github.com/google/uuid"

	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/types"
)

// CreateOrderInput carries everything the checkout submission provides on
// top of the basket itself.
type CreateOrderInput struct {
	BasketID         string
	BuyerEmail       string
	DeliveryMethodID uuid.UUID
	ShipTo           types.Address
}

func (in CreateOrderInput) Validate() error {
	if in.BasketID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "basket id is required")
	}
	if in.BuyerEmail == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer email is required")
	}
	if in.DeliveryMethodID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery method id is required")
	}
	if missing := in.ShipTo.Validate(); missing != "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete").
			WithDetails(map[string]any{"missing_field": missing})
	}
	return nil
}
