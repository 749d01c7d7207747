package controllers

import (
	"net/http"

	"github.com/angelmondragon/feiralocal-backend/api/responses"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
)

func AdminDashboard(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.AdminDashboard(r.Context()))
	}
}

// AdminSeedOrders adds a batch of random demo orders.
func AdminSeedOrders(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccessStatus(w, http.StatusCreated, svc.SeedDemoOrders(r.Context()))
	}
}

// AdminReset erases all persisted state and returns to the seed catalog.
func AdminReset(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ResetAll(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
