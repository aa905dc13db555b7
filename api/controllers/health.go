package controllers

import (
	"net/http"

	"github.com/aquapeak/cart-service/api/responses"
	"github.com/aquapeak/cart-service/pkg/config"
	pkgerrors "github.com/aquapeak/cart-service/pkg/errors"
	"github.com/aquapeak/cart-service/pkg/kv"
	"github.com/aquapeak/cart-service/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AquaPeak-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, storage kv.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AquaPeak-Env", cfg.App.Env)
		if storage != nil {
			if err := storage.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "kv backend unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
