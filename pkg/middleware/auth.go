package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"notemaster/pkg/errors"
	"notemaster/pkg/models"
)

// SessionProvider exposes the active session
type SessionProvider interface {
	Current() *models.Session
}

// RequireSession rejects API requests while no valid session is active
func RequireSession(sessions SessionProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessions.Current()
			if session == nil {
				unauthorized(w, errors.ErrNotAuthenticated)
				return
			}
			if !session.Valid(time.Now()) {
				unauthorized(w, errors.ErrSessionExpired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(errors.ToFrontendError(err))
}
