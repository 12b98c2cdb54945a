package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Bitwaves/config"
	"Bitwaves/database"
	"Bitwaves/handlers"
	"Bitwaves/middleware"
	"Bitwaves/models"
	"Bitwaves/services"
	"Bitwaves/shared/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Environment, cfg.Debug)

	slog.Info("Initializing BitWaves request server")

	// Initialize session store
	services.InitSessionStore(cfg)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := database.SeedAdminUser(cfg); err != nil {
		slog.Error("Failed to seed admin user", "error", err)
		os.Exit(1)
	}

	// Hydrate the request store from the last persisted snapshots. The
	// in-memory store stays authoritative; writes behind are best-effort.
	store := services.NewRequestStore(cfg)
	if persisted, err := database.LoadRequests(); err != nil {
		slog.Error("Failed to load persisted requests", "error", err)
	} else {
		store.Hydrate(persisted)
		slog.Info("Hydrated request store", "count", len(persisted))
	}
	store.OnChange(func(r models.Request) {
		go func() {
			if err := database.SaveRequest(r); err != nil {
				slog.Error("Failed to persist request", "request_id", r.ID, "error", err)
			}
		}()
	})

	blocklist := services.NewBlocklist()
	if entries, err := database.LoadBlockedIPs(); err != nil {
		slog.Error("Failed to load blocked IPs", "error", err)
	} else {
		blocklist.Hydrate(entries)
	}

	// Start the processor loop against the playout system
	playout := services.NewPlayItClient(cfg)
	processor := services.NewProcessor(cfg, store, playout)
	processor.Start()

	h := handlers.New(cfg, store, blocklist, playout)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("/healthz", handlers.HealthHandler)
	mux.HandleFunc("/api/tracks", h.TracksHandler)
	mux.HandleFunc("/api/settings", h.SettingsHandler)
	mux.HandleFunc("/api/requestTrack", h.RequestTrackHandler)
	mux.HandleFunc("/api/login", h.LoginHandler)
	mux.HandleFunc("/api/logout", h.LogoutHandler)

	// Admin routes
	mux.Handle("/api/requests", middleware.RequireAuth(http.HandlerFunc(h.RequestsHandler)))
	mux.Handle("/api/requests/hold", middleware.RequireAuth(http.HandlerFunc(h.HoldRequestHandler)))
	mux.Handle("/api/requests/unhold", middleware.RequireAuth(http.HandlerFunc(h.UnholdRequestHandler)))
	mux.Handle("/api/requests/process", middleware.RequireAuth(http.HandlerFunc(h.ProcessRequestHandler)))
	mux.Handle("/api/requests/delete", middleware.RequireAuth(http.HandlerFunc(h.DeleteRequestHandler)))
	mux.Handle("/api/blocklist", middleware.RequireAuth(http.HandlerFunc(h.BlocklistHandler)))

	// Static client build
	mux.Handle("/", http.FileServer(http.Dir("static")))

	addr := ":" + cfg.ServerPort
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		slog.Info("BitWaves is starting", "addr", addr, "environment", cfg.Environment, "debug", cfg.Debug)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	processor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
