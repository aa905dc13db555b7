package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aquapeak/cart-service/api/responses"
	"github.com/aquapeak/cart-service/pkg/auth/session"
	"github.com/aquapeak/cart-service/pkg/config"
	pkgerrors "github.com/aquapeak/cart-service/pkg/errors"
	"github.com/aquapeak/cart-service/pkg/logger"
)

// Session validates a bearer session token and seeds the request context with
// the session id the cart keys derive from.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token"))
				return
			}

			sessionID, err := session.Parse(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxSessionID, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
