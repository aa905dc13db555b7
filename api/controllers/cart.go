package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aquapeak/cart-service/api/middleware"
	"github.com/aquapeak/cart-service/api/responses"
	"github.com/aquapeak/cart-service/api/validators"
	cartsvc "github.com/aquapeak/cart-service/internal/cart"
	"github.com/aquapeak/cart-service/internal/catalog"
	pkgerrors "github.com/aquapeak/cart-service/pkg/errors"
	"github.com/aquapeak/cart-service/pkg/logger"
)

type cartView struct {
	Items       []cartsvc.LineItem `json:"items"`
	RecentItems []cartsvc.LineItem `json:"recentItems"`
	Totals      cartsvc.Totals     `json:"totals"`
}

type addItemRequest struct {
	Listing  catalog.Listing `json:"listing"`
	Quantity int             `json:"quantity" validate:"omitempty,gte=1"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// CartFetch returns the session's cart, recent items, and totals.
func CartFetch(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(r.Context(), store))
	}
}

// CartAddItem merges a listing into the session's cart.
func CartAddItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := payload.Quantity
		if qty == 0 {
			qty = 1
		}

		line := store.AddItem(r.Context(), payload.Listing, qty)
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"line": line,
			"cart": newCartView(r.Context(), store),
		})
	}
}

// CartSetQuantity replaces a line's quantity.
func CartSetQuantity(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		if err := store.SetQuantity(r.Context(), productID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, mapCartError(err))
			return
		}
		responses.WriteSuccess(w, newCartView(r.Context(), store))
	}
}

// CartRemoveItem drops a line from the session's cart.
func CartRemoveItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.RemoveItem(r.Context(), chi.URLParam(r, "productId"))
		responses.WriteSuccess(w, newCartView(r.Context(), store))
	}
}

// CartClear empties the session's cart and recent items.
func CartClear(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Clear(r.Context())
		responses.WriteSuccess(w, newCartView(r.Context(), store))
	}
}

func newCartView(ctx context.Context, store *cartsvc.Store) cartView {
	return cartView{
		Items:       store.Items(),
		RecentItems: store.RecentItems(),
		Totals:      store.Totals(ctx),
	}
}

func sessionStore(r *http.Request, manager *cartsvc.Manager, logg *logger.Logger) (*cartsvc.Store, error) {
	if manager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart manager unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing")
	}
	store, err := manager.ForSession(r.Context(), sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session cart")
	}
	return store, nil
}

func mapCartError(err error) error {
	switch {
	case errors.Is(err, cartsvc.ErrQuantityFloor):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity must be at least 1")
	case errors.Is(err, cartsvc.ErrLineNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not in cart")
	default:
		return err
	}
}
