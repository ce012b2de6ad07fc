package cart

import (
	"net/http"

	"github.com/angelmondragon/tableside-backend/api/responses"
	"github.com/angelmondragon/tableside-backend/api/validators"
	cartsvc "github.com/angelmondragon/tableside-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
	"github.com/angelmondragon/tableside-backend/pkg/logger"
)

// CartFetch returns the member's cart at the restaurant, creating it on first use.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		openID, wpOpenID := callerFromQuery(r)
		ctx := tagCaller(r, logg, openID, wpOpenID)

		cart, err := svc.GetOrCreateCart(ctx, openID, wpOpenID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartAddItem appends a product line to the member's existing cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		openID, wpOpenID := callerFromQuery(r)
		ctx := tagCaller(r, logg, openID, wpOpenID)

		var payload cartsvc.AddItemInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.AddItem(ctx, openID, wpOpenID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, item)
	}
}

// CartRemoveItem drops one line, identified entirely by query parameters.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		openID, wpOpenID := callerFromQuery(r)
		ctx := tagCaller(r, logg, openID, wpOpenID)

		cartID, err := validators.RequiredQueryID(r, "cart_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		cartItemID, err := validators.RequiredQueryID(r, "cart_item_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(ctx, openID, wpOpenID, cartID, cartItemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartRecountItem sets the count of a line in the member's cart.
func CartRecountItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		openID, wpOpenID := callerFromQuery(r)
		ctx := tagCaller(r, logg, openID, wpOpenID)

		var payload cartsvc.RecountInput
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.RecountItem(ctx, openID, wpOpenID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, item)
	}
}
