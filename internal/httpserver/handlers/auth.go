package handlers

import (
	"net/http"

	"aitool-hub/internal/domain"
	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/httpserver/mw"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Token         string       `json:"token,omitempty"`
	User          *domain.User `json:"user,omitempty"`
	// Resumed 登录后是否执行了之前挂起的动作
	Resumed bool `json:"resumed,omitempty"`
}

func toSessionResponse(sess domain.Session, resumed bool) sessionResponse {
	return sessionResponse{Authenticated: true, Token: sess.Token, User: &sess.User, Resumed: resumed}
}

// Login 校验失败返回 400，message 是表单上显示的文案
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d, r, err)
			return
		}

		pending := d.Auth.HasPending()
		sess, err := d.Auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess, pending))
	}
}

func Signup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d, r, err)
			return
		}

		pending := d.Auth.HasPending()
		sess, err := d.Auth.Signup(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			writeError(w, d, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(sess, pending))
	}
}

func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Auth.Logout(r.Context()); err != nil {
			writeError(w, d, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Session 请求 token 与当前会话一致时才算已登录
func Session(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := d.Auth.Authorize(mw.Token(r))
		if !ok {
			writeJSON(w, http.StatusOK, sessionResponse{})
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess, false))
	}
}

// Dismiss 关闭登录提示，挂起的动作被丢弃
func Dismiss(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"dismissed": d.Auth.Dismiss()})
	}
}
