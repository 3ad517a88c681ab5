package handlers

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	appmw "notemaster/pkg/middleware"
)

// NewRouter wires the local API. staticDir, when it exists, is served at /
// for the browser front end.
func NewRouter(authH *AuthHandlers, api *APIHandlers, sessions appmw.SessionProvider, staticDir string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		// Authentication routes (no session required)
		r.Post("/auth/login", authH.LoginHandler)
		r.Post("/auth/register", authH.RegisterHandler)
		r.Post("/auth/logout", authH.LogoutHandler)
		r.Get("/auth/me", authH.MeHandler)
		r.Get("/enhance/modes", api.ModesHandler)

		r.Group(func(r chi.Router) {
			r.Use(appmw.RequireSession(sessions))

			r.Get("/notifications", api.NotificationsHandler)
			r.Get("/topics", api.ListTopicsHandler)
			r.Post("/topics", api.CreateTopicHandler)

			r.Route("/topics/{id}", func(r chi.Router) {
				r.Post("/notes", api.AddNoteHandler)

				r.Get("/editor", api.EditorHandler)
				r.Delete("/editor", api.CloseEditorHandler)
				r.Post("/editor/intents", api.IntentHandler)
				r.Post("/editor/input", api.InputHandler)
				r.Post("/editor/composition", api.CompositionHandler)

				r.Post("/enhance", api.EnhanceHandler)
				r.Post("/enhance/accept", api.AcceptHandler)
				r.Post("/enhance/reject", api.RejectHandler)

				r.Post("/drafts/resubmit", api.ResubmitHandler)
				r.Get("/export", api.ExportHandler)
			})
		})
	})

	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(staticDir)))
		}
	}
	return r
}
