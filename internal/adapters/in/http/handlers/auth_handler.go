// internal/adapters/in/http/handlers/auth_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/adapters/in/http/session"
	auth "storefront/internal/application/usecase/auth"
	userdom "storefront/internal/domain/user"
)

// AuthHandler drives the per-session identity lifecycle.
//
//	POST   /auth/register   {email,password,name,address}
//	POST   /auth/login      {email,password}
//	POST   /auth/logout
//	GET    /auth/me         state + principal + profile
//	PUT    /auth/profile    {name,address}
//	DELETE /auth/account    orders -> profile -> principal の順で削除
type AuthHandler struct {
	sessions *session.Registry
}

func NewAuthHandler(sessions *session.Registry) http.Handler {
	return &AuthHandler{sessions: sessions}
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Address  string `json:"address"`
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeErr(w, http.StatusInternalServerError, "auth handler is not configured")
		return
	}

	b := h.sessions.Resolve(w, r)
	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case path == "/auth/register" && r.Method == http.MethodPost:
		h.handleRegister(w, r, b)

	case path == "/auth/login" && r.Method == http.MethodPost:
		h.handleLogin(w, r, b)

	case path == "/auth/logout" && r.Method == http.MethodPost:
		b.Auth.Logout()
		writeJSON(w, http.StatusOK, meJSON(b.Auth))

	case path == "/auth/me" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, meJSON(b.Auth))

	case path == "/auth/profile" && r.Method == http.MethodPut:
		h.handleProfile(w, r, b)

	case path == "/auth/account" && r.Method == http.MethodDelete:
		if err := b.Auth.DeleteAccount(r.Context()); err != nil {
			writeErrFrom(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request, b *session.Bundle) {
	var body credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed credentials payload")
		return
	}

	if err := b.Auth.Register(r.Context(), body.Email, body.Password, body.Name, body.Address); err != nil {
		writeErrFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meJSON(b.Auth))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request, b *session.Bundle) {
	var body credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed credentials payload")
		return
	}

	if err := b.Auth.Login(r.Context(), body.Email, body.Password); err != nil {
		writeErrFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meJSON(b.Auth))
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request, b *session.Bundle) {
	var upd userdom.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed profile payload")
		return
	}
	if err := upd.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := b.Auth.UpdateProfile(r.Context(), upd); err != nil {
		writeErrFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meJSON(b.Auth))
}

func meJSON(s *auth.Session) map[string]any {
	out := map[string]any{"state": s.State()}
	if p, ok := s.CurrentPrincipal(); ok {
		out["uid"] = p.UID
		out["email"] = p.Email
	}
	if profile := s.CurrentProfile(); profile != nil {
		out["profile"] = profile
	}
	return out
}
