package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/httpserver/deps"
)

func ListVideos(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.Videos.List())
	}
}

// ResolveVideo 首次播放前调用，已解析的视频直接返回
func ResolveVideo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := d.Resolver.Resolve(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// prepareVideo 平台视频的 ID 可以留空 (播放时解析)，但填了就必须合法
func prepareVideo(v *domain.Video) error {
	if v.Source == "" {
		v.Source = domain.SourcePlatform
	}
	if err := common.ValidateStruct(v); err != nil {
		return err
	}
	switch v.Source {
	case domain.SourcePlatform:
		if v.PlatformID != "" && !domain.ValidPlatformID(v.PlatformID) {
			return common.NewError(common.ErrCodeInvalidInput, "platformId must be 11 characters from [A-Za-z0-9_-]")
		}
	case domain.SourceUpload:
		if v.BlobURL == "" {
			return common.NewError(common.ErrCodeInvalidInput, "blobUrl is required for uploaded videos")
		}
	}
	return nil
}
