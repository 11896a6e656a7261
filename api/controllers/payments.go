package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mvaldes-dev/storecraft-backend/api/responses"
	"github.com/mvaldes-dev/storecraft-backend/internal/basket"
	"github.com/mvaldes-dev/storecraft-backend/internal/payments"
	"github.com/mvaldes-dev/storecraft-backend/internal/pricing"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
)

// PaymentsReconcile reprices the basket and creates or updates its payment
// intent. Called every time the buyer lands on the payment step.
func PaymentsReconcile(coord *payments.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if coord == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment coordinator unavailable"))
			return
		}

		basketID := chi.URLParam(r, "basketId")
		if basketID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "basket id required"))
			return
		}

		b, err := coord.ReconcileIntent(r.Context(), basketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPaymentResponse(b))
	}
}

type paymentResponse struct {
	PaymentReference string          `json:"payment_reference"`
	ClientSecret     string          `json:"client_secret"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingPrice    decimal.Decimal `json:"shipping_price"`
	Total            decimal.Decimal `json:"total"`
	AmountMinorUnits int64           `json:"amount_minor_units"`
	Basket           basketResponse  `json:"basket"`
}

func newPaymentResponse(b *basket.Basket) paymentResponse {
	total := b.Subtotal().Add(b.ShippingPrice)
	return paymentResponse{
		PaymentReference: b.PaymentReference,
		ClientSecret:     b.ClientSecret,
		Subtotal:         b.Subtotal(),
		ShippingPrice:    b.ShippingPrice,
		Total:            total,
		AmountMinorUnits: pricing.MinorUnits(total),
		Basket:           newBasketResponse(b),
	}
}
