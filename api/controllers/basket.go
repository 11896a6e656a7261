package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvaldes-dev/storecraft-backend/api/responses"
	"github.com/mvaldes-dev/storecraft-backend/api/validators"
	basketsvc "github.com/mvaldes-dev/storecraft-backend/internal/basket"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
)

// BasketGet returns the basket for the client-supplied id.
func BasketGet(store basketsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket store unavailable"))
			return
		}

		b, err := store.Get(r.Context(), chi.URLParam(r, "basketId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBasketResponse(b))
	}
}

// BasketPut replaces the basket under the client-supplied id. The backend
// never invents basket ids; the storefront owns them.
func BasketPut(store basketsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket store unavailable"))
			return
		}

		basketID := chi.URLParam(r, "basketId")
		if basketID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "basket id required"))
			return
		}

		var payload putBasketRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := store.Get(r.Context(), basketID)
		if err != nil && pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		b := payload.toBasket(basketID)
		if existing != nil {
			// Item and delivery edits keep the intent binding; amounts are
			// refreshed on the next pass through payment.
			b.PaymentReference = existing.PaymentReference
			b.ClientSecret = existing.ClientSecret
		}

		saved, err := store.Put(r.Context(), b)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBasketResponse(saved))
	}
}

// BasketDelete removes the basket.
func BasketDelete(store basketsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket store unavailable"))
			return
		}

		if err := store.Delete(r.Context(), chi.URLParam(r, "basketId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusNoContent, nil)
	}
}

type putBasketRequest struct {
	Items            []basketItemPayload `json:"items" validate:"dive"`
	DeliveryMethodID *uuid.UUID          `json:"delivery_method_id"`
}

type basketItemPayload struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
}

func (p putBasketRequest) toBasket(basketID string) *basketsvc.Basket {
	items := make([]basketsvc.Item, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, basketsvc.Item{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ImageURL:    item.ImageURL,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}
	return &basketsvc.Basket{
		ID:               basketID,
		Items:            items,
		DeliveryMethodID: p.DeliveryMethodID,
	}
}

type basketResponse struct {
	ID               string           `json:"id"`
	Items            []basketsvc.Item `json:"items"`
	DeliveryMethodID *uuid.UUID       `json:"delivery_method_id,omitempty"`
	ShippingPrice    decimal.Decimal  `json:"shipping_price"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	PaymentReference string           `json:"payment_reference,omitempty"`
	ClientSecret     string           `json:"client_secret,omitempty"`
}

func newBasketResponse(b *basketsvc.Basket) basketResponse {
	items := b.Items
	if items == nil {
		items = []basketsvc.Item{}
	}
	return basketResponse{
		ID:               b.ID,
		Items:            items,
		DeliveryMethodID: b.DeliveryMethodID,
		ShippingPrice:    b.ShippingPrice,
		Subtotal:         b.Subtotal(),
		PaymentReference: b.PaymentReference,
		ClientSecret:     b.ClientSecret,
	}
}
