package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvaldes-dev/storecraft-backend/api/responses"
	"github.com/mvaldes-dev/storecraft-backend/api/validators"
	basketsvc "github.com/mvaldes-dev/storecraft-backend/internal/basket"
	ordersvc "github.com/mvaldes-dev/storecraft-backend/internal/orders"
	"github.com/mvaldes-dev/storecraft-backend/pkg/db/models"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
	"github.com/mvaldes-dev/storecraft-backend/pkg/types"
)

// OrderCreate freezes the basket into an order and clears the basket.
func OrderCreate(svc ordersvc.Service, baskets basketsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The basket has served its purpose. A failed delete is not worth
		// failing the order over; it expires on its own.
		if baskets != nil {
			if err := baskets.Delete(r.Context(), payload.BasketID); err != nil && logg != nil {
				logg.Warn(logg.WithBasketID(r.Context(), payload.BasketID), "failed to clear basket after order")
			}
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// OrderGet returns a single order by id.
func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderList returns the orders placed under a buyer email.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orders, err := svc.ListOrders(r.Context(), r.URL.Query().Get("email"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, newOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type createOrderRequest struct {
	BasketID         string        `json:"basket_id" validate:"required"`
	BuyerEmail       string        `json:"buyer_email" validate:"required,email"`
	DeliveryMethodID uuid.UUID     `json:"delivery_method_id" validate:"required"`
	ShipTo           types.Address `json:"ship_to" validate:"required"`
}

func (p createOrderRequest) toInput() ordersvc.CreateOrderInput {
	return ordersvc.CreateOrderInput{
		BasketID:         p.BasketID,
		BuyerEmail:       p.BuyerEmail,
		DeliveryMethodID: p.DeliveryMethodID,
		ShipTo:           p.ShipTo,
	}
}

type orderResponse struct {
	ID               uuid.UUID              `json:"id"`
	Status           string                 `json:"status"`
	BuyerEmail       string                 `json:"buyer_email"`
	PaymentReference string                 `json:"payment_reference"`
	DeliveryName     string                 `json:"delivery_name"`
	DeliveryPrice    decimal.Decimal        `json:"delivery_price"`
	ShipTo           types.Address          `json:"ship_to"`
	Subtotal         decimal.Decimal        `json:"subtotal"`
	Total            decimal.Decimal        `json:"total"`
	Items            []models.OrderLineItem `json:"items"`
	CreatedAt        string                 `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := order.Items
	if items == nil {
		items = []models.OrderLineItem{}
	}
	return orderResponse{
		ID:               order.ID,
		Status:           string(order.Status),
		BuyerEmail:       order.BuyerEmail,
		PaymentReference: order.PaymentReference,
		DeliveryName:     order.DeliveryName,
		DeliveryPrice:    order.DeliveryPrice,
		ShipTo:           order.ShipTo,
		Subtotal:         order.Subtotal,
		Total:            order.Total(),
		Items:            items,
		CreatedAt:        order.CreatedAt.UTC().Format(time.RFC3339),
	}
}
