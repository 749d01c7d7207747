package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/feiralocal-backend/api/responses"
	"github.com/angelmondragon/feiralocal-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
)

const envHeader = "X-FeiraLocal-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the storage backend within the configured timeout.
func HealthReady(cfg *config.Config, logg *logger.Logger, storage Pinger) http.HandlerFunc {
	timeout := cfg.Storage.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if storage != nil {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			if err := storage.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage unavailable").
					WithDetails(map[string]any{"backend": cfg.Storage.Backend}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "storage": cfg.Storage.Backend})
	}
}
