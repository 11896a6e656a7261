package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mvaldes-dev/storecraft-backend/api/responses"
	"github.com/mvaldes-dev/storecraft-backend/internal/catalog"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
)

// ProductList returns the storefront catalog.
func ProductList(repo catalog.ProductCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		products, err := repo.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// ProductGet returns a single product.
func ProductGet(repo catalog.ProductCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := repo.FindProductByID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeliveryMethodList returns the shipping options, cheapest first.
func DeliveryMethodList(repo catalog.DeliveryCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		methods, err := repo.ListDeliveryMethods(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, methods)
	}
}
