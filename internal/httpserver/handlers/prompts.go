package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/httpserver/deps"
)

// ListPrompts 公开列表只包含已发布的提示词
func ListPrompts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, publishedPrompts(d, ""))
	}
}

func GetPrompt(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := d.Catalog.Prompts.Get(chi.URLParam(r, "id"))
		if !ok || p.Status == domain.PromptDraft {
			writeMessage(w, http.StatusNotFound, "Prompt not found")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// PromptsByCategory 分类名不区分大小写
func PromptsByCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, publishedPrompts(d, chi.URLParam(r, "category")))
	}
}

func publishedPrompts(d deps.Deps, category string) []domain.Prompt {
	all := d.Catalog.Prompts.List()
	out := make([]domain.Prompt, 0, len(all))
	for _, p := range all {
		if p.Status == domain.PromptDraft {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// preparePrompt 提示词只能创建和删除，创建时补默认状态
func preparePrompt(now func() time.Time) prepareFunc[domain.Prompt] {
	return func(p *domain.Prompt) error {
		if p.Status == "" {
			p.Status = domain.PromptPublished
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now()
		}
		return common.ValidateStruct(p)
	}
}
