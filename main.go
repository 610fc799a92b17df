package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ApprovalBot/internal/config"
	"ApprovalBot/internal/platform"
	ghplatform "ApprovalBot/internal/platform/github"
	"ApprovalBot/internal/platform/postgres"
	"ApprovalBot/internal/platform/rosterfile"
	"ApprovalBot/internal/service"
	"ApprovalBot/internal/status"
	httptransport "ApprovalBot/internal/transport/http"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.LoadDotEnv(os.Getenv("ENV_FILE")); err != nil {
		logger.Error("load env file", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()

	p, cleanup, err := buildPlatform(context.Background(), cfg.Platform)
	if err != nil {
		logger.Error("init platform", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	svc := service.New(p, status.NewReconciler(cfg.Status.ProfileBaseURL), logger)
	handler := httptransport.NewHandler(svc, cfg.Platform.GitHub.WebhookSecret)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr, "platform", cfg.Platform.Type)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
}

func buildPlatform(ctx context.Context, cfg config.PlatformConfig) (platform.Platform, func(), error) {
	var (
		p       platform.Platform
		cleanup = func() {}
	)

	switch cfg.Type {
	case "github":
		client, err := ghplatform.New(cfg.GitHub, http.DefaultClient)
		if err != nil {
			return nil, nil, err
		}
		p = client
	case "postgres":
		store, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		p, cleanup = store, store.Close
	default:
		return nil, nil, fmt.Errorf("unsupported platform type: %s", cfg.Type)
	}

	if cfg.RosterFile != "" {
		roster, err := rosterfile.Load(cfg.RosterFile)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		p = rosterfile.Overlay(p, roster)
	}

	return p, cleanup, nil
}
