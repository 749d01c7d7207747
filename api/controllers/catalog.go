package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/feiralocal-backend/api/responses"
	"github.com/angelmondragon/feiralocal-backend/api/validators"
	"github.com/angelmondragon/feiralocal-backend/internal/scheduler"
	"github.com/angelmondragon/feiralocal-backend/internal/storefront"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
)

const maxSearchLen = 120

// CatalogView returns everything the customer page renders in one payload.
func CatalogView(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Catalog(r.Context()))
	}
}

// ListProducts filters the grid. Query parameters q, category, store and
// sort override the persisted criteria for this request only.
func ListProducts(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		view, err := svc.Products(r.Context(), storefront.ProductQuery{
			Search:   validators.OptionalQuery(r, "q", maxSearchLen),
			Category: validators.OptionalQuery(r, "category", 0),
			Store:    validators.OptionalQuery(r, "store", 0),
			Sort:     validators.OptionalQuery(r, "sort", 0),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ListCategories(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Categories(r.Context()))
	}
}

// ListStores returns the store tiles, "all" first. q filters by name or niche.
func ListStores(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLen)
		responses.WriteSuccess(w, svc.StoreTiles(r.Context(), query))
	}
}

func DiscoveryRows(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Discovery(r.Context()))
	}
}

func GetFilters(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Filters(r.Context()))
	}
}

type updateFiltersRequest struct {
	Search             *string `json:"search,omitempty" validate:"omitempty,max=120"`
	Category           *string `json:"category,omitempty"`
	Store              *string `json:"store,omitempty"`
	Sort               *string `json:"sort,omitempty"`
	StoreSearch        *string `json:"storeSearch,omitempty" validate:"omitempty,max=120"`
	OperatorStoreID    *string `json:"lojaSelectedStoreId,omitempty"`
	CollapseCategories *bool   `json:"collapseCategories,omitempty"`
	CollapseStores     *bool   `json:"collapseStores,omitempty"`
	CollapseRules      *bool   `json:"collapseRules,omitempty"`
}

func (req updateFiltersRequest) toPatch() storefront.FilterPatch {
	return storefront.FilterPatch{
		Search:             req.Search,
		Category:           req.Category,
		Store:              req.Store,
		Sort:               req.Sort,
		StoreSearch:        req.StoreSearch,
		OperatorStoreID:    req.OperatorStoreID,
		CollapseCategories: req.CollapseCategories,
		CollapseStores:     req.CollapseStores,
		CollapseRules:      req.CollapseRules,
	}
}

// UpdateFilters applies a partial change to the persisted criteria.
func UpdateFilters(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateFiltersRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := svc.UpdateFilters(r.Context(), payload.toPatch())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, filters)
	}
}

type searchRequest struct {
	Query string `json:"q" validate:"max=120"`
}

type pendingSearch struct {
	Pending bool   `json:"pending"`
	Query   string `json:"q"`
	DelayMS int64  `json:"delayMs"`
}

// SearchFilters takes raw search keystrokes. With ?live=true the update is
// debounced so only the last keystroke of a burst is applied, and the
// response is 202; otherwise it is applied at once.
func SearchFilters(svc CatalogService, debouncer *scheduler.Debouncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live, err := validators.ParseQueryBool(r, "live", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload searchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !live || debouncer == nil {
			filters, err := svc.SetSearch(r.Context(), payload.Query)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, filters)
			return
		}

		ctx := context.WithoutCancel(r.Context())
		query := payload.Query
		debouncer.Call(func() {
			if _, err := svc.SetSearch(ctx, query); err != nil && logg != nil {
				logg.Error(ctx, "debounced search failed", err)
			}
		})
		responses.WriteSuccessStatus(w, http.StatusAccepted, pendingSearch{
			Pending: true,
			Query:   query,
			DelayMS: debouncer.Delay().Milliseconds(),
		})
	}
}
