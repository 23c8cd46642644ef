package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/service/discovery"
)

type attemptResponse struct {
	Tier  domain.Tier `json:"tier"`
	Error string      `json:"error"`
}

type discoverResponse[T any] struct {
	Kind     domain.ListKind   `json:"kind"`
	Tier     domain.Tier       `json:"tier"`
	Items    []T               `json:"items"`
	Attempts []attemptResponse `json:"attempts,omitempty"`
}

// Discover 发现页列表，响应中带上产出数据的层级和各层失败原因
func Discover(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := domain.ParseListKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeError(w, d, r, common.WrapError(common.ErrCodeNotFound, err.Error(), err))
			return
		}

		if kind == domain.ListTutorials {
			res, err := d.Discovery.FetchVideos(r.Context())
			if err != nil {
				writeError(w, d, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toDiscoverResponse(kind, res))
			return
		}

		res, err := d.Discovery.FetchTools(r.Context(), kind)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDiscoverResponse(kind, res))
	}
}

func toDiscoverResponse[T any](kind domain.ListKind, res discovery.Result[T]) discoverResponse[T] {
	out := discoverResponse[T]{Kind: kind, Tier: res.Tier, Items: res.Items}
	if out.Items == nil {
		out.Items = []T{}
	}
	for _, a := range res.Attempts {
		out.Attempts = append(out.Attempts, attemptResponse{Tier: a.Tier, Error: a.Err.Error()})
	}
	return out
}
