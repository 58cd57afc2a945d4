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

	"github.com/ahmethakanbesel/stockseries/internal/config"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
	"github.com/ahmethakanbesel/stockseries/internal/scraper/yahoo"
	"github.com/ahmethakanbesel/stockseries/internal/server"
	"github.com/ahmethakanbesel/stockseries/internal/stock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	// Root context: cancelled on SIGINT/SIGTERM so in-flight upstream fetches
	// stop promptly during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// One session is shared by every request.
	client := &http.Client{Timeout: cfg.Yahoo.HTTPTimeout()}
	sessionOpts := []yahoo.SessionOption{yahoo.WithSessionClient(client)}
	if cfg.Yahoo.CookieURL != "" {
		sessionOpts = append(sessionOpts, yahoo.WithCookieURL(cfg.Yahoo.CookieURL))
	}
	if cfg.Yahoo.CrumbURL != "" {
		sessionOpts = append(sessionOpts, yahoo.WithCrumbURL(cfg.Yahoo.CrumbURL))
	}
	session := yahoo.NewSessionProvider(sessionOpts...)

	yahooOpts := []yahoo.Option{
		yahoo.WithClient(client),
		yahoo.WithCredentials(session),
		yahoo.WithRateLimit(cfg.Yahoo.RateLimit),
	}
	if cfg.Yahoo.HistoryURL != "" {
		yahooOpts = append(yahooOpts, yahoo.WithHistoryEndpoint(cfg.Yahoo.HistoryURL))
	}
	if cfg.Yahoo.StatisticsURL != "" {
		yahooOpts = append(yahooOpts, yahoo.WithStatisticsEndpoint(cfg.Yahoo.StatisticsURL))
	}

	// Source registry
	registry := scraper.NewRegistry()
	registry.Register(yahoo.New(yahooOpts...))

	svc := stock.NewService(registry)

	// HTTP server: rootCtx is the BaseContext, so every request context
	// inherits from it and is cancelled on shutdown.
	srv := server.New(rootCtx, cfg.Port, svc)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("server started", "port", cfg.Port, "sources", registry.Sources())
	<-done

	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
