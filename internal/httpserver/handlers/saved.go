package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/httpserver/mw"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/store"
)

func ListSaved(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity := chi.URLParam(r, "entity")
		ids, err := d.Catalog.Saved(entity)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entity": entity, "ids": ids})
	}
}

// Save 收藏需要登录：没有有效 token 时挂起这次收藏，登录或注册成功后执行
func Save(d deps.Deps) http.HandlerFunc {
	return savedAction(d, true)
}

func Unsave(d deps.Deps) http.HandlerFunc {
	return savedAction(d, false)
}

func savedAction(d deps.Deps, add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
		if _, err := d.Catalog.Saved(entity); err != nil {
			writeError(w, d, r, err)
			return
		}
		if add && !d.Catalog.Exists(entity, id) {
			writeError(w, d, r, store.ErrNotFound)
			return
		}

		apply := func(ctx context.Context) error {
			if add {
				return d.Catalog.AddSaved(ctx, entity, id)
			}
			return d.Catalog.RemoveSaved(ctx, entity, id)
		}

		if _, ok := d.Auth.Authorize(mw.Token(r)); !ok {
			// 挂起的动作在之后的登录请求中执行，不能使用本次请求的 ctx
			d.Auth.Defer(func() {
				if err := apply(context.Background()); err != nil {
					d.Logger.Warn("deferred saved action failed", logger.String("entity", entity), logger.String("id", id), logger.Error(err))
				}
			})
			writeJSON(w, http.StatusUnauthorized, map[string]string{"auth": "required"})
			return
		}

		if err := apply(r.Context()); err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entity": entity, "id": id, "saved": add})
	}
}
