package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/feiralocal-backend/api/responses"
	"github.com/angelmondragon/feiralocal-backend/api/validators"
	"github.com/angelmondragon/feiralocal-backend/internal/cart"
	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
)

func GetCart(svc CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Cart(r.Context()))
	}
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// AddCartItem adds one unit. A product from a store other than the cart's
// is rejected with 409 and the cart is left as it was.
func AddCartItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.AddToCart(r.Context(), strings.TrimSpace(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type changeQuantityRequest struct {
	Delta int `json:"delta" validate:"ne=0,min=-999,max=999"`
}

func ChangeCartItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := strings.TrimSpace(chi.URLParam(r, "productID"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}
		var payload changeQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.ChangeQuantity(r.Context(), productID, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func ClearCart(svc CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.ClearCart(r.Context()))
	}
}

type quickStartResponse struct {
	Cart  cart.Summary    `json:"cart"`
	Added catalog.Product `json:"added"`
}

// QuickStart adds a random available product, for demos.
func QuickStart(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, added, err := svc.QuickStart(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quickStartResponse{Cart: summary, Added: added})
	}
}
