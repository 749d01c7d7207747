package controllers

import (
	"net/http"

	"github.com/angelmondragon/feiralocal-backend/api/responses"
	"github.com/angelmondragon/feiralocal-backend/api/validators"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
	"github.com/angelmondragon/feiralocal-backend/pkg/pagination"
)

// NextCursorHeader carries the cursor of the following page of orders.
const NextCursorHeader = "X-Next-Cursor"

// ListOrders returns the history, newest first. With limit or cursor in the
// query it returns one page and sets X-Next-Cursor when more remain.
func ListOrders(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history := svc.Orders(r.Context())

		query := r.URL.Query()
		if !query.Has("limit") && !query.Has("cursor") {
			responses.WriteSuccess(w, history)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, next, err := pagination.Slice(history, pagination.Params{
			Limit:  limit,
			Cursor: query.Get("cursor"),
		}, orderCursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}
		if next != "" {
			w.Header().Set(NextCursorHeader, next)
		}
		responses.WriteSuccess(w, page)
	}
}

func orderCursor(o orders.Order) pagination.Cursor {
	return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
}

// AdvanceOrder moves the oldest unfinished order one stage forward. With
// every order delivered it answers 422.
func AdvanceOrder(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.AdvanceOrder(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func ResetOrders(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.ResetOrders(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}
