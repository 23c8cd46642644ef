package handlers

import (
	"net/http"
	"time"

	"aitool-hub/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Maintenance   bool    `json:"maintenance"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Version:       d.Version,
			Maintenance:   d.Catalog.Maintenance(),
			UptimeSeconds: time.Since(start).Seconds(),
		})
	}
}

// Index 根路径，未知路由都会被重定向到这里
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":        "aitool-hub",
			"version":     d.Version,
			"maintenance": d.Catalog.Maintenance(),
		})
	}
}

// NotFound 未知路由重定向到首页
func NotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}
