package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notemaster/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration, using defaults: %v", err)
		cfg = config.Defaults()
	}
	ensureConfigFile(cfg)

	// Log configuration paths for user information
	log.Printf("Configuration loaded:")
	log.Printf("  Config file: %s", config.GetConfigFilePath())
	log.Printf("  Notes service: %s", cfg.APIBaseURL)
	log.Printf("  AI service: %s", cfg.AIBaseURL)
	log.Printf("  Session backend: %s", cfg.SessionBackend)
	log.Printf("  Drafts: %s", cfg.DraftsPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	// Pending autosaves are flushed before the process exits.
	app.Close()
}
