package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/feiralocal-backend/api/responses"
	"github.com/angelmondragon/feiralocal-backend/api/validators"
	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
)

// StoreDashboard serves the operator panel; storeID "all" consolidates.
func StoreDashboard(svc OperatorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.StoreDashboard(r.Context(), chi.URLParam(r, "storeID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ListStoreProducts(svc OperatorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.StoreProducts(r.Context(), chi.URLParam(r, "storeID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

type createProductRequest struct {
	Name      string          `json:"name" validate:"required,max=120"`
	Category  string          `json:"category" validate:"required,max=60"`
	Price     decimal.Decimal `json:"price"`
	Available *bool           `json:"available,omitempty"`
	Badge     *string         `json:"badge,omitempty" validate:"omitempty,max=40"`
	Image     *string         `json:"image,omitempty"`
}

func CreateStoreProduct(svc OperatorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.AddProduct(r.Context(), chi.URLParam(r, "storeID"), catalog.NewProduct{
			Name:      payload.Name,
			Category:  payload.Category,
			Price:     payload.Price,
			Available: payload.Available,
			Badge:     payload.Badge,
			Image:     payload.Image,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name      *string          `json:"name,omitempty" validate:"omitempty,max=120"`
	Category  *string          `json:"category,omitempty" validate:"omitempty,max=60"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Available *bool            `json:"available,omitempty"`
	Badge     *string          `json:"badge,omitempty" validate:"omitempty,max=40"`
}

// UpdateStoreProduct patches one product. Orders already placed keep the
// name and price they were created with.
func UpdateStoreProduct(svc OperatorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.UpdateProduct(r.Context(), chi.URLParam(r, "storeID"), productID, catalog.ProductPatch{
			Name:      payload.Name,
			Category:  payload.Category,
			Price:     payload.Price,
			Available: payload.Available,
			Badge:     payload.Badge,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteStoreProduct(svc OperatorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), chi.URLParam(r, "storeID"), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func productParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "productID"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return id, nil
}
