package routes

import (
	"github.com/go-chi/chi/v5"

	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/httpserver/handlers"
	"aitool-hub/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(mw.RequireAdmin(d.Auth, d.Logger))

		r.Get("/dashboard", handlers.Dashboard(d))
		r.Post("/refresh", handlers.Refresh(d))

		r.Get("/tools", handlers.ListAdminTools(d))
		r.Post("/tools", handlers.CreateTool(d))
		r.Post("/tools/import", handlers.ImportTools(d))
		r.Put("/tools/{id}", handlers.UpdateTool(d))
		r.Delete("/tools/{id}", handlers.DeleteTool(d))
		r.Post("/tools/{id}/enrich", handlers.EnrichTool(d))

		r.Get("/prompts", handlers.ListAdminPrompts(d))
		r.Post("/prompts", handlers.CreatePrompt(d))
		r.Delete("/prompts/{id}", handlers.DeletePrompt(d))

		r.Get("/videos", handlers.ListAdminVideos(d))
		r.Post("/videos", handlers.CreateVideo(d))
		r.Put("/videos/{id}", handlers.UpdateVideo(d))
		r.Delete("/videos/{id}", handlers.DeleteVideo(d))

		r.Get("/users", handlers.ListUsers(d))
		r.Post("/users", handlers.CreateUser(d))
		r.Put("/users/{id}", handlers.UpdateUser(d))
		r.Delete("/users/{id}", handlers.DeleteUser(d))

		r.Get("/settings", handlers.GetSettings(d))
		r.Put("/settings", handlers.PutSettings(d))
	})
}
