package controllers

import (
	"net/http"
	"time"

	"github.com/aquapeak/cart-service/api/responses"
	"github.com/aquapeak/cart-service/pkg/auth/session"
	"github.com/aquapeak/cart-service/pkg/config"
	pkgerrors "github.com/aquapeak/cart-service/pkg/errors"
	"github.com/aquapeak/cart-service/pkg/logger"
)

type sessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionCreate mints a cart session token. The storefront calls this once
// per browser and stores the token alongside its local cart state.
func SessionCreate(cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		token, sessionID, err := session.Mint(cfg, now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{
			Token:     token,
			SessionID: sessionID,
			ExpiresAt: now.Add(cfg.TTL()).UTC(),
		})
	}
}
