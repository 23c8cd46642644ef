package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"aitool-hub/internal/auth"
	"aitool-hub/internal/common"
	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/service/studio"
	"aitool-hub/internal/service/video"
	"aitool-hub/internal/store"
)

// maxBodyBytes 表单和对话请求体上限
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Fields  []common.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// writeError 按错误类型映射状态码，5xx 才记录为 Error
func writeError(w http.ResponseWriter, d deps.Deps, r *http.Request, err error) {
	status := statusOf(err)
	resp := errorResponse{Message: err.Error()}

	var verr *common.ValidationError
	var appErr *common.AppError
	switch {
	case errors.As(err, &verr):
		resp.Message = "Validation failed"
		resp.Fields = verr.Fields
	case errors.As(err, &appErr):
		resp.Message = appErr.Message
		resp.Code = appErr.Code
	}

	if status >= http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	}
	writeJSON(w, status, resp)
}

func statusOf(err error) int {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrNameRequired):
		return http.StatusBadRequest
	case errors.Is(err, video.ErrNoMatch):
		return http.StatusNotFound
	case errors.Is(err, video.ErrNotResolved), errors.Is(err, studio.ErrImageGeneration):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch common.CodeOf(err) {
	case common.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case common.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case common.ErrCodeForbidden:
		return http.StatusForbidden
	case common.ErrCodeNotFound:
		return http.StatusNotFound
	case common.ErrCodeConflict:
		return http.StatusConflict
	case common.ErrCodeNotConfigured:
		return http.StatusServiceUnavailable
	case common.ErrCodeWebhook, common.ErrCodeGitHubAPI, common.ErrCodeAIProcessing:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// decode 解析 JSON 请求体，未知字段视为错误
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return common.WrapError(common.ErrCodeInvalidInput, fmt.Sprintf("invalid request body: %v", err), err)
	}
	return nil
}
