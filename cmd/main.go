package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/text-mate/chatroom-service/config"
	"github.com/text-mate/chatroom-service/internal/analysis"
	"github.com/text-mate/chatroom-service/internal/cache"
	"github.com/text-mate/chatroom-service/internal/service"
	"github.com/text-mate/chatroom-service/internal/storage"
	"github.com/text-mate/chatroom-service/internal/storage/memory"
	"github.com/text-mate/chatroom-service/internal/storage/postgres"
	httpx "github.com/text-mate/chatroom-service/internal/transport/http"
	"github.com/text-mate/chatroom-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chatroom-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	ctx := context.Background()

	// --- store: memory по умолчанию, postgres как drop-in замена ---
	var store storage.RoomStore
	switch cfg.Storage.Backend {
	case "postgres":
		store, err = postgres.New(ctx, cfg.Storage.DSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
	default:
		store = memory.New()
	}
	defer store.Close()
	slog.Info("store ready", "backend", cfg.Storage.Backend)

	// --- analysis cache ---
	var analysisCache cache.Cache
	if cfg.Redis.URL != "" {
		analysisCache, err = cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
	} else {
		analysisCache = cache.NewMemory()
	}
	defer analysisCache.Close()

	// --- services ---
	roomSvc := service.NewRoomService(store)
	querySvc := service.NewQueryService(store)
	analysisSvc := service.NewAnalysisService(roomSvc, analysis.New(), analysisCache, cfg.AnalysisCacheTTL())

	// --- HTTP ---
	handler := httpx.NewHandler(roomSvc, querySvc, analysisSvc)
	router := httpx.NewRouter(handler)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
