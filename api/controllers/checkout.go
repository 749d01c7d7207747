package controllers

import (
	"net/http"

	"github.com/angelmondragon/feiralocal-backend/api/responses"
	"github.com/angelmondragon/feiralocal-backend/api/validators"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
	"github.com/angelmondragon/feiralocal-backend/pkg/types"
)

// Required fields are checked by the order manager so the customer sees its
// message; the tags here only bound input size.
type checkoutRequest struct {
	Name      string `json:"name" validate:"max=120"`
	Phone     string `json:"phone" validate:"max=40"`
	Street    string `json:"street" validate:"max=160"`
	District  string `json:"district" validate:"max=120"`
	Extra     string `json:"extra,omitempty" validate:"max=160"`
	PayMethod string `json:"paymethod,omitempty"`
}

func (req checkoutRequest) toCheckout() (orders.Checkout, error) {
	method, err := enums.ParsePaymentMethod(req.PayMethod)
	if err != nil {
		return orders.Checkout{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method").
			WithDetails(map[string]any{"paymethod": req.PayMethod})
	}
	return orders.Checkout{
		Customer:  types.Customer{Name: req.Name, Phone: req.Phone},
		Address:   types.Address{Line1: req.Street, District: req.District, Extra: req.Extra},
		PayMethod: method,
	}, nil
}

// Checkout turns the cart into an order. A store that cannot be messaged is
// reported as a notice; the order is created either way.
func Checkout(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toCheckout()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, notices, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessWithNotices(w, http.StatusCreated, result, notices)
	}
}
