package handlers

import (
	"net/http"
	"strings"
	"time"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/logger"
)

type dashboardResponse struct {
	Counts           map[string]int `json:"counts"`
	NeedsEnrichment  int            `json:"needsEnrichment"`
	UnresolvedVideos int            `json:"unresolvedVideos"`
	Maintenance      bool           `json:"maintenance"`
	EnrichEnabled    bool           `json:"enrichEnabled"`
}

// Dashboard 管理后台概览
func Dashboard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := dashboardResponse{
			Counts:        d.Catalog.Counts(),
			Maintenance:   d.Catalog.Maintenance(),
			EnrichEnabled: d.Enricher != nil && d.Enricher.Enabled(),
		}
		for _, t := range d.Catalog.Tools.List() {
			if t.NeedsEnrichment() {
				resp.NeedsEnrichment++
			}
		}
		for _, v := range d.Catalog.Videos.List() {
			if v.NeedsResolution() {
				resp.UnresolvedVideos++
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type settings struct {
	Maintenance *bool `json:"maintenance" validate:"required"`
}

func GetSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		on := d.Catalog.Maintenance()
		writeJSON(w, http.StatusOK, settings{Maintenance: &on})
	}
}

// PutSettings 目前只有维护模式开关
func PutSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settings
		if err := decode(w, r, &req); err != nil {
			writeError(w, d, r, err)
			return
		}
		if err := common.ValidateStruct(req); err != nil {
			writeError(w, d, r, err)
			return
		}

		d.Catalog.SetMaintenance(r.Context(), *req.Maintenance)
		d.Logger.Info("maintenance mode changed", logger.Bool("on", *req.Maintenance))
		writeJSON(w, http.StatusOK, req)
	}
}

// Refresh 手动触发一次发现列表刷新，不等待结果
func Refresh(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.RefreshTrigger == nil {
			writeError(w, d, r, common.NewError(common.ErrCodeNotConfigured, "poller is not running"))
			return
		}
		d.RefreshTrigger()
		d.Logger.Info("manual refresh triggered via endpoint", logger.String("remote_ip", r.RemoteAddr))
		writeMessage(w, http.StatusAccepted, "Refresh triggered")
	}
}

func ListAdminTools(d deps.Deps) http.HandlerFunc   { return ListAll(d.Catalog.Tools) }
func CreateTool(d deps.Deps) http.HandlerFunc       { return Create(d, d.Catalog.Tools, prepareTool) }
func UpdateTool(d deps.Deps) http.HandlerFunc       { return Replace(d, d.Catalog.Tools, prepareTool) }
func DeleteTool(d deps.Deps) http.HandlerFunc       { return Remove(d, d.Catalog.Tools) }
func ListAdminPrompts(d deps.Deps) http.HandlerFunc { return ListAll(d.Catalog.Prompts) }
func DeletePrompt(d deps.Deps) http.HandlerFunc     { return Remove(d, d.Catalog.Prompts) }
func ListAdminVideos(d deps.Deps) http.HandlerFunc  { return ListAll(d.Catalog.Videos) }
func CreateVideo(d deps.Deps) http.HandlerFunc      { return Create(d, d.Catalog.Videos, prepareVideo) }
func UpdateVideo(d deps.Deps) http.HandlerFunc      { return Replace(d, d.Catalog.Videos, prepareVideo) }
func DeleteVideo(d deps.Deps) http.HandlerFunc      { return Remove(d, d.Catalog.Videos) }
func ListUsers(d deps.Deps) http.HandlerFunc        { return ListAll(d.Catalog.Users) }
func DeleteUser(d deps.Deps) http.HandlerFunc       { return Remove(d, d.Catalog.Users) }

func CreatePrompt(d deps.Deps) http.HandlerFunc {
	return Create(d, d.Catalog.Prompts, preparePrompt(time.Now))
}

func CreateUser(d deps.Deps) http.HandlerFunc {
	return Create(d, d.Catalog.Users, prepareUser(time.Now))
}

func UpdateUser(d deps.Deps) http.HandlerFunc {
	return Replace(d, d.Catalog.Users, prepareUser(time.Now))
}

func prepareUser(now func() time.Time) prepareFunc[domain.User] {
	return func(u *domain.User) error {
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		if u.Role == "" {
			u.Role = domain.RoleUser
		}
		if u.Status == "" {
			u.Status = domain.UserActive
		}
		if u.JoinedAt.IsZero() {
			u.JoinedAt = now()
		}
		return common.ValidateStruct(u)
	}
}
