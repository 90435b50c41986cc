package controllers

import (
	"net/http"

	"github.com/okestore/storefront-sync/api/responses"
	"github.com/okestore/storefront-sync/api/validators"
	"github.com/okestore/storefront-sync/internal/orders"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/logger"
)

// Checkout turns the session cart into an order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body orders.CheckoutInput
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
