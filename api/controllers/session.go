package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/feiralocal-backend/api/responses"
	"github.com/angelmondragon/feiralocal-backend/api/validators"
	"github.com/angelmondragon/feiralocal-backend/internal/persistence"
	"github.com/angelmondragon/feiralocal-backend/internal/storefront"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
)

func GetScope(svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Scope(r.Context()))
	}
}

type scopeRequest struct {
	Area  string `json:"area" validate:"max=80"`
	Niche string `json:"niche" validate:"max=80"`
	Hours string `json:"hours" validate:"max=40"`
	SLA   string `json:"sla" validate:"max=40"`
}

// UpdateScope merges the non-blank fields into the operating scope.
func UpdateScope(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload scopeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scope := svc.UpdateScope(r.Context(), persistence.Scope{
			Area:  payload.Area,
			Niche: payload.Niche,
			Hours: payload.Hours,
			SLA:   payload.SLA,
		})
		responses.WriteSuccess(w, scope)
	}
}

func GetAuth(svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Auth(r.Context()))
	}
}

type loginRequest struct {
	Name     string `json:"name" validate:"max=120"`
	Phone    string `json:"phone" validate:"max=40"`
	Email    string `json:"email" validate:"omitempty,email"`
	StoreID  string `json:"storeId"`
	Operator string `json:"operator" validate:"max=120"`
	Password string `json:"password"`
}

func roleParam(r *http.Request) (enums.ActorRole, error) {
	raw := chi.URLParam(r, "role")
	role, err := enums.ParseActorRole(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role").WithDetails(map[string]any{"role": raw})
	}
	return role, nil
}

// Login is a simulated sign-in; nothing is authenticated and the password
// is only checked for presence.
func Login(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := roleParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		auth, err := svc.Login(r.Context(), role, storefront.Login{
			Name:     payload.Name,
			Phone:    payload.Phone,
			Email:    payload.Email,
			StoreID:  payload.StoreID,
			Operator: payload.Operator,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, auth)
	}
}

func Logout(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := roleParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		auth, err := svc.Logout(r.Context(), role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, auth)
	}
}
