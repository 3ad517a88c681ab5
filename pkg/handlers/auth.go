package handlers

import (
	"net/http"

	"notemaster/pkg/services"
)

// AuthHandlers contains authentication-related handlers
type AuthHandlers struct {
	auth    *services.AuthService
	editors *services.EditorService
}

// NewAuthHandlers creates new auth handlers. Open editors are closed, and
// their pending saves flushed, before logging out.
func NewAuthHandlers(auth *services.AuthService, editors *services.EditorService) *AuthHandlers {
	return &AuthHandlers{auth: auth, editors: editors}
}

// LoginHandler exchanges credentials for a session
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":      session.User,
		"expiresAt": session.ExpiresAt,
	})
}

// RegisterHandler creates an account; the front end proceeds to login
func (h *AuthHandlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// LogoutHandler ends the session
func (h *AuthHandlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if h.editors != nil {
		h.editors.CloseAll()
	}
	if err := h.auth.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MeHandler returns the signed-in user
func (h *AuthHandlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
