package routes

import (
	"github.com/go-chi/chi/v5"

	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/httpserver/handlers"
)

func init() { Register(registerAuth) }

// 登录相关接口不受维护模式影响，管理员需要能登录后关闭维护模式
func registerAuth(r chi.Router, d deps.Deps) {
	r.Post("/api/auth/login", handlers.Login(d))
	r.Post("/api/auth/signup", handlers.Signup(d))
	r.Post("/api/auth/logout", handlers.Logout(d))
	r.Get("/api/auth/session", handlers.Session(d))
	r.Post("/api/auth/dismiss", handlers.Dismiss(d))
}
