package routes

import (
	"github.com/go-chi/chi/v5"

	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/httpserver/handlers"
	"aitool-hub/internal/httpserver/mw"
)

func init() { Register(registerPublic) }

// registerPublic 目录浏览相关的公开接口，维护模式下返回 503
func registerPublic(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Index(d))
	r.Get("/healthz", handlers.Healthz(d))

	r.Group(func(r chi.Router) {
		r.Use(mw.Maintenance(d.Catalog.Maintenance, d.Auth))

		r.Get("/api/discover/{kind}", handlers.Discover(d))

		r.Get("/api/tools", handlers.ListTools(d))
		r.Get("/api/tools/{id}", handlers.GetTool(d))

		r.Get("/api/prompts", handlers.ListPrompts(d))
		r.Get("/api/prompts/category/{category}", handlers.PromptsByCategory(d))
		r.Get("/api/prompts/{id}", handlers.GetPrompt(d))

		r.Get("/api/videos", handlers.ListVideos(d))
		r.Post("/api/videos/{id}/resolve", handlers.ResolveVideo(d))

		r.Get("/api/saved/{entity}", handlers.ListSaved(d))
		r.Post("/api/saved/{entity}/{id}", handlers.Save(d))
		r.Delete("/api/saved/{entity}/{id}", handlers.Unsave(d))

		r.Post("/api/studio/chat", handlers.Chat(d))
		r.Post("/api/studio/image", handlers.GenerateImage(d))
	})
}
