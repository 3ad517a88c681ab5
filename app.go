package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"notemaster/pkg/auth"
	"notemaster/pkg/autosave"
	"notemaster/pkg/client"
	"notemaster/pkg/config"
	"notemaster/pkg/export"
	"notemaster/pkg/handlers"
	"notemaster/pkg/models"
	"notemaster/pkg/services"
	"notemaster/pkg/storage"
)

// App holds the wired components of the companion service
type App struct {
	config   *config.Config
	manager  *auth.Manager
	tokens   *storage.TokenStore
	redis    *storage.RedisSessionStore
	drafts   *storage.DraftStore
	authSvc  *services.AuthService
	editors  *services.EditorService
	notifier *services.Notifier
	router   http.Handler
}

// NewApp wires every component from cfg. ctx bounds background watchers.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{config: cfg}

	// Session persistence
	var store auth.SessionStore
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		redisStore, err := storage.NewRedisSessionStore(cfg.RedisURL, "default")
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		a.redis = redisStore
		store = redisStore
	default:
		a.tokens = storage.NewTokenStore(cfg.TokenPath)
		store = a.tokens
	}

	drafts, err := storage.OpenDraftStore(cfg.DraftsPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("draft outbox: %w", err)
	}
	a.drafts = drafts

	// Remote collaborators share the manager's session.
	sessions := client.SessionFunc(func() *models.Session { return a.manager.Current() })
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	rest := client.New(cfg.APIBaseURL, httpClient, sessions)
	ai := client.NewAIClient(cfg.AIBaseURL, nil, sessions)

	a.manager = auth.NewManager(store, rest)
	if err := a.manager.Restore(ctx); err != nil {
		log.Printf("Warning: starting without a session: %v", err)
	}

	a.notifier = services.NewNotifier(50)
	a.authSvc = services.NewAuthService(a.manager, a.notifier)
	if a.tokens != nil {
		if err := a.authSvc.Watch(ctx, a.tokens); err != nil {
			log.Printf("Warning: token file will not be watched: %v", err)
		}
	}

	topics := services.NewTopicService(rest)
	scheduler := autosave.NewScheduler(cfg.AutosaveDelay, cfg.RequestTimeout, rest, drafts)
	a.editors = services.NewEditorService(topics, ai, scheduler, newExporter(ctx, cfg), a.notifier)

	a.router = handlers.NewRouter(
		handlers.NewAuthHandlers(a.authSvc, a.editors),
		handlers.NewAPIHandlers(topics, a.editors, a.notifier),
		a.manager,
		"./static",
	)
	return a, nil
}

// newExporter builds the PDF exporter, or nil when no browser is installed
func newExporter(ctx context.Context, cfg *config.Config) *export.Exporter {
	page, err := export.ParsePageFormat(cfg.PageFormat)
	if err != nil {
		log.Printf("Warning: %v, using A4", err)
		page = export.A4
	}

	chrome, err := export.NewChrome(cfg.ChromePath, 0)
	if err != nil {
		log.Printf("Warning: PDF export disabled: %v", err)
		return nil
	}

	var sink export.Sink = export.FileSink{Dir: cfg.ExportDir}
	if cfg.S3Endpoint != "" {
		s3, err := export.NewS3Sink(ctx, export.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			log.Printf("Warning: S3 export sink unavailable, writing to %s: %v", cfg.ExportDir, err)
		} else {
			sink = s3
		}
	}
	return export.NewExporter(chrome, sink, page)
}

// Handler returns the local API
func (a *App) Handler() http.Handler {
	return a.router
}

// Close flushes pending saves and releases resources
func (a *App) Close() {
	if a.editors != nil {
		a.editors.CloseAll()
	}
	if a.tokens != nil {
		a.tokens.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.drafts != nil {
		a.drafts.Close()
	}
}

// ensureConfigFile writes the defaults on first run so users have a file to edit
func ensureConfigFile(cfg *config.Config) {
	path := config.GetConfigFilePath()
	if _, err := os.Stat(path); err == nil {
		return
	}
	if err := cfg.Save(); err != nil {
		log.Printf("Warning: could not write default configuration: %v", err)
		return
	}
	log.Printf("Wrote default configuration to %s", path)
}
