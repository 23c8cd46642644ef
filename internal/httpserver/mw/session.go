package mw

import (
	"encoding/json"
	"net/http"
	"strings"

	"aitool-hub/internal/auth"
	"aitool-hub/internal/logger"
)

// LoginPath 未登录或非管理员访问后台时的跳转目标
const LoginPath = "/login"

// Token 从 "Authorization: Bearer <token>" 中取出会话 token
func Token(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAdmin 管理后台守卫：没有会话或不是 admin 时返回 401 并指向登录页
func RequireAdmin(sim *auth.Simulator, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := sim.Authorize(Token(r))
			if !ok || !sess.User.IsAdmin() {
				log.Debug("admin guard rejected request",
					logger.String("path", r.URL.Path),
					logger.Bool("session", ok))
				w.Header().Set("Location", LoginPath)
				writeMessage(w, http.StatusUnauthorized, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Maintenance 维护模式下公开接口返回 503，管理员会话不受影响
func Maintenance(enabled func() bool, sim *auth.Simulator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if enabled() {
				if sess, ok := sim.Authorize(Token(r)); !ok || !sess.User.IsAdmin() {
					w.Header().Set("Retry-After", "300")
					writeMessage(w, http.StatusServiceUnavailable, "Service is under maintenance")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
