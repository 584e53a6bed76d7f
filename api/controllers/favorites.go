package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kurokira/storefront-backend/api/responses"
	"github.com/kurokira/storefront-backend/internal/favorites"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

// FavoritesList returns the session's favorite slugs.
func FavoritesList(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		slugs, err := svc.List(ctx, sid)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"slugs": slugs})
	}
}

// FavoriteAdd marks one product slug as a favorite. Idempotent.
func FavoriteAdd(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		slugs, err := svc.Add(ctx, sid, slug)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"slugs": slugs})
	}
}

// FavoriteRemove unmarks one slug. Absent slugs are a no-op.
func FavoriteRemove(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid, ok := sessionID(w, r, logg)
		if !ok {
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		slugs, err := svc.Remove(ctx, sid, slug)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"slugs": slugs})
	}
}

// FavoritesClear empties the favorites set.
func FavoritesClear(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, map[string]any{"slugs": []string{}})
	}
}
