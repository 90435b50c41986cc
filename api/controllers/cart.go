package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/okestore/storefront-sync/api/responses"
	"github.com/okestore/storefront-sync/api/validators"
	"github.com/okestore/storefront-sync/internal/cart"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/okestore/storefront-sync/pkg/types"
)

type addCartItemRequest struct {
	Product  models.Product `json:"product" validate:"required"`
	Quantity int            `json:"quantity"`
	Color    string         `json:"selectedColor"`
	Size     *string        `json:"selectedSize"`
}

type cartLineKey struct {
	ProductID string  `json:"productId" validate:"required"`
	Color     string  `json:"selectedColor"`
	Size      *string `json:"selectedSize"`
}

type updateCartItemRequest struct {
	cartLineKey
	Quantity int `json:"quantity" validate:"required"`
}

type cartResponse struct {
	Items []models.CartLine `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func newCartResponse(lines []models.CartLine) cartResponse {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return cartResponse{Items: lines, Total: cart.Total(lines)}
}

func CartFetch(svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(svc.Snapshot().Cart))
	}
}

// CartAddItem merges a product line into the cart.
func CartAddItem(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addCartItemRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Product.Price.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative"))
			return
		}
		lines := svc.AddToCart(r.Context(), body.Product, body.Quantity, strings.TrimSpace(body.Color), body.Size)
		responses.WriteSuccess(w, newCartResponse(lines))
	}
}

func CartUpdateItem(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body updateCartItemRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines := svc.UpdateQuantity(r.Context(), body.ProductID, strings.TrimSpace(body.Color), body.Quantity, body.Size)
		responses.WriteSuccess(w, newCartResponse(lines))
	}
}

func CartRemoveItem(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body cartLineKey
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines := svc.RemoveItem(r.Context(), body.ProductID, strings.TrimSpace(body.Color), body.Size)
		responses.WriteSuccess(w, newCartResponse(lines))
	}
}

func CartClear(svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.ClearCart(r.Context())
		responses.WriteSuccess(w, newCartResponse(nil))
	}
}

func WishlistFetch(svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, types.Items(svc.Snapshot().Wishlist))
	}
}

// WishlistToggle adds the product when absent and removes it when present.
func WishlistToggle(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
			return
		}
		ids := svc.ToggleWishlist(r.Context(), productID)
		if ids == nil {
			ids = []string{}
		}
		responses.WriteSuccess(w, types.Items(ids))
	}
}
