package handlers

import (
	"net/http"

	"aitool-hub/internal/domain"
	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/logger"
)

type chatRequest struct {
	History []domain.ChatMessage `json:"history"`
	Prompt  string               `json:"prompt"`
}

// Chat 以分块的纯文本流式返回模型输出。
// 开始输出之前的错误返回 JSON，之后中断只能截断流。
func Chat(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d, r, err)
			return
		}

		flusher, _ := w.(http.Flusher)
		started := false
		msg, err := d.Studio.Chat(r.Context(), req.History, req.Prompt, func(chunk string) error {
			if !started {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("X-Content-Type-Options", "nosniff")
				w.WriteHeader(http.StatusOK)
				started = true
			}
			if _, err := w.Write([]byte(chunk)); err != nil {
				return err
			}
			if flusher != nil {
				flusher.Flush()
			}
			return nil
		})
		if err == nil {
			return
		}
		if !started {
			writeError(w, d, r, err)
			return
		}
		d.Logger.Warn("chat stream truncated", logger.Int("received", len(msg.Text)), logger.Error(err))
	}
}

type imageRequest struct {
	Prompt string `json:"prompt"`
}

type imageResponse struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"` // base64
}

func GenerateImage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req imageRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d, r, err)
			return
		}
		img, err := d.Studio.GenerateImage(r.Context(), req.Prompt)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusOK, imageResponse{MIMEType: img.MIMEType, Data: img.Data})
	}
}
