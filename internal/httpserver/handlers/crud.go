package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/store"
)

// prepareFunc 写入前补默认值并校验
type prepareFunc[T any] func(item *T) error

// ListAll 管理后台列表，返回全部记录
func ListAll[T store.Entity[T]](t *store.Table[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, t.List())
	}
}

// Create 新记录的 id 由 Table 生成 (请求中带 id 时沿用)
func Create[T store.Entity[T]](d deps.Deps, t *store.Table[T], prepare prepareFunc[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := decode(w, r, &item); err != nil {
			writeError(w, d, r, err)
			return
		}
		if err := prepare(&item); err != nil {
			writeError(w, d, r, err)
			return
		}

		added, err := t.Add(r.Context(), item)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		d.Logger.Info("record created", logger.String("table", t.Key()), logger.String("id", added.GetID()))
		writeJSON(w, http.StatusCreated, added)
	}
}

// Replace 整条替换，id 以路径为准
func Replace[T store.Entity[T]](d deps.Deps, t *store.Table[T], prepare prepareFunc[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := t.Get(id); !ok {
			writeError(w, d, r, store.ErrNotFound)
			return
		}

		var item T
		if err := decode(w, r, &item); err != nil {
			writeError(w, d, r, err)
			return
		}
		if err := prepare(&item); err != nil {
			writeError(w, d, r, err)
			return
		}

		updated, err := t.Update(r.Context(), id, func(cur *T) { *cur = item })
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		d.Logger.Info("record updated", logger.String("table", t.Key()), logger.String("id", id))
		writeJSON(w, http.StatusOK, updated)
	}
}

// Remove 只删除该 id，其它记录不受影响
func Remove[T store.Entity[T]](d deps.Deps, t *store.Table[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := t.Delete(r.Context(), id); err != nil {
			writeError(w, d, r, err)
			return
		}
		d.Logger.Info("record deleted", logger.String("table", t.Key()), logger.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
