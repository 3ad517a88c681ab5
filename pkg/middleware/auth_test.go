package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notemaster/pkg/models"
)

type fixedSession struct{ s *models.Session }

func (f fixedSession) Current() *models.Session { return f.s }

func TestRequireSession(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name    string
		session *models.Session
		status  int
		code    string
	}{
		{"no session", nil, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
		{"expired", &models.Session{Token: "x", ExpiresAt: time.Now().Add(-time.Minute)}, http.StatusUnauthorized, "SESSION_EXPIRED"},
		{"valid", &models.Session{Token: "x"}, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireSession(fixedSession{tt.session})(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/topics", nil))
			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				var body struct {
					Code string `json:"code"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.code, body.Code)
			}
		})
	}
}
