package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/logger"
)

// ListTools 支持 ?category= 过滤 (不区分大小写)
func ListTools(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tools := d.Catalog.Tools.List()
		if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
			filtered := make([]domain.Tool, 0, len(tools))
			for _, t := range tools {
				if strings.EqualFold(t.Category, category) {
					filtered = append(filtered, t)
				}
			}
			tools = filtered
		}
		writeJSON(w, http.StatusOK, tools)
	}
}

// GetTool 详情页：缺字段时先补全再返回，补全失败返回原记录
func GetTool(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		tool, ok := d.Catalog.Tools.Get(id)
		if !ok {
			writeMessage(w, http.StatusNotFound, "Tool not found")
			return
		}

		if tool.NeedsEnrichment() && d.Enricher != nil && d.Enricher.Enabled() {
			enriched, _, err := d.Enricher.EnrichAndStore(r.Context(), id)
			if err != nil {
				d.Logger.Warn("enrich on read failed", logger.String("id", id), logger.Error(err))
			} else {
				tool = enriched
			}
		}
		writeJSON(w, http.StatusOK, tool)
	}
}

// EnrichTool 管理员手动触发补全。未配置模型时返回原记录，changed=false。
func EnrichTool(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tool, changed, err := d.Enricher.EnrichAndStore(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tool": tool, "changed": changed})
	}
}

type importRequest struct {
	Topic      string `json:"topic" validate:"required"`
	MaxDaysOld *int   `json:"maxDaysOld,omitempty" validate:"omitempty,gte=0"`
}

// ImportTools 按 GitHub topic 批量导入，只添加目录中没有的 id
func ImportTools(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Importer == nil {
			writeError(w, d, r, common.NewError(common.ErrCodeNotConfigured, "GitHub import is not configured"))
			return
		}

		var req importRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d, r, err)
			return
		}
		if err := common.ValidateStruct(req); err != nil {
			writeError(w, d, r, err)
			return
		}
		maxDaysOld := d.ImportMaxDaysOld
		if req.MaxDaysOld != nil {
			maxDaysOld = *req.MaxDaysOld
		}

		found, err := d.Importer.SearchTools(r.Context(), req.Topic, maxDaysOld)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		added := d.Catalog.ImportTools(r.Context(), found)
		writeJSON(w, http.StatusOK, map[string]int{"found": len(found), "added": added})
	}
}

// prepareTool 由域名推导 URL 后校验
func prepareTool(t *domain.Tool) error {
	t.Normalize()
	return common.ValidateStruct(t)
}
