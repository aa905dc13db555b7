package controllers

import (
	"net/http"

	"github.com/aquapeak/cart-service/api/middleware"
	"github.com/aquapeak/cart-service/api/responses"
	cartsvc "github.com/aquapeak/cart-service/internal/cart"
	"github.com/aquapeak/cart-service/internal/checkout"
	"github.com/aquapeak/cart-service/pkg/logger"
)

// CheckoutSubmit builds a submission from the session's cart and delivers
// it to the order endpoint. The cart is cleared only after delivery is
// acknowledged.
func CheckoutSubmit(manager *cartsvc.Manager, svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		receipt, err := svc.Submit(r.Context(), sessionID, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
