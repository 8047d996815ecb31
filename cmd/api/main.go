package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikhilbhutani/ttsproxy/internal/api"
	"github.com/nikhilbhutani/ttsproxy/internal/cache"
	"github.com/nikhilbhutani/ttsproxy/internal/config"
	"github.com/nikhilbhutani/ttsproxy/internal/metrics"
	"github.com/nikhilbhutani/ttsproxy/internal/ratelimit"
	"github.com/nikhilbhutani/ttsproxy/internal/synthesis"
	"github.com/nikhilbhutani/ttsproxy/internal/tts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	provider, err := tts.New(tts.Config{
		Provider: cfg.TTS.Provider,
		APIURL:   cfg.TTS.APIURL,
		APIKey:   cfg.TTS.APIKey,
		Model:    cfg.TTS.Model,
		Language: cfg.TTS.Language,
		Timeout:  cfg.TTS.Timeout,
	})
	if err != nil {
		slog.Error("failed to create tts provider", "error", err)
		os.Exit(1)
	}

	store := cache.NewStore(cfg.Cache.MaxEntries)
	limiter := ratelimit.NewFixedWindow(cfg.RateLimit.Max, cfg.RateLimit.Window, ratelimit.WithSweep(time.Minute))
	defer limiter.Close()

	m := metrics.New()
	svc := synthesis.NewService(provider, store, limiter, m, synthesis.Options{
		CacheTTL:       cfg.Cache.TTL,
		LimitCacheHits: cfg.RateLimit.LimitCacheHits,
	})

	router := api.NewRouter(cfg, svc, m)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.TTS.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting tts proxy",
			"addr", cfg.Addr(),
			"provider", provider.Name(),
			"cache_ttl", cfg.Cache.TTL.String(),
			"rate_limit_window", cfg.RateLimit.Window.String(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
