package controllers

import (
	"net/http"

	"github.com/kurokira/storefront-backend/api/middleware"
	"github.com/kurokira/storefront-backend/api/responses"
	"github.com/kurokira/storefront-backend/api/validators"
	"github.com/kurokira/storefront-backend/internal/cart"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

type addCartItemPayload struct {
	Slug     string `json:"slug" validate:"required"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
}

type cartLinePayload struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

func sessionID(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	sid := middleware.SessionIDFromContext(r.Context())
	if sid == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
		return "", false
	}
	return sid, true
}

// CartGet returns the session's cart.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		dto, err := svc.Get(ctx, sid)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CartAddItem adds one line, merging with an existing (product, size, color).
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		var payload addCartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.AddItem(ctx, sid, cart.AddItemInput{
			Slug:     payload.Slug,
			Size:     payload.Size,
			Color:    payload.Color,
			Quantity: payload.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// CartUpdateItem sets a line's quantity; zero removes it.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		var payload cartLinePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		key := cart.LineKey{ProductID: payload.ProductID, Size: payload.Size, Color: payload.Color}
		dto, err := svc.UpdateQuantity(ctx, sid, key, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CartRemoveItem drops one line.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		var payload cartLinePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		key := cart.LineKey{ProductID: payload.ProductID, Size: payload.Size, Color: payload.Color}
		dto, err := svc.RemoveItem(ctx, sid, key)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CartClear empties the session's cart.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		if err := svc.Clear(ctx, sid); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart.CartDTO{Items: []cart.Line{}})
	}
}
