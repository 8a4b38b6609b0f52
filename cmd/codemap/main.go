package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/config"
	dbRedis "github.com/codemapper/codemap/internal/db/redis"
	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/index"
	logpkg "github.com/codemapper/codemap/internal/logger"
	"github.com/codemapper/codemap/internal/metrics"
	"github.com/codemapper/codemap/internal/repository/indexfile"
	selectionrepo "github.com/codemapper/codemap/internal/repository/selection"
	chiTransport "github.com/codemapper/codemap/internal/transport/chi"
	openaiTransport "github.com/codemapper/codemap/internal/transport/openai"
	"github.com/codemapper/codemap/internal/transport/websearch"
	autocompleteuc "github.com/codemapper/codemap/internal/usecase/autocomplete"
	healthuc "github.com/codemapper/codemap/internal/usecase/health"
	rerankuc "github.com/codemapper/codemap/internal/usecase/rerank"
	searchuc "github.com/codemapper/codemap/internal/usecase/search"
	"github.com/codemapper/codemap/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting codemap API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Int("systems", len(cfg.Systems)),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterEmbeddingMetrics()

	// Load every terminology system's index tables into memory.
	loader := indexfile.New(logger)
	systems := make([]*index.System, 0, len(cfg.Systems))
	for name, sysCfg := range cfg.Systems {
		sys, err := loader.Load(name, sysCfg.IndexPath)
		if err != nil {
			logger.Fatal("Failed to load terminology system",
				zap.String("system", name), zap.Error(err))
		}
		sys.TopK = sysCfg.TopK
		sys.IncludeEnglish = sysCfg.IncludeEnglish
		systems = append(systems, sys)
	}
	registry := index.NewRegistry(systems...)

	embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	selections := selectionrepo.New(store, cfg.Storage.KeyPrefix)

	searchSvc := searchuc.New(registry, embedder, logger)
	autocompleteSvc := autocompleteuc.New(registry, logger)
	rerankEngine := rerankuc.New(logger)
	healthSvc := healthuc.New(store, embedder, registry)

	webClient := websearch.New(&websearch.Config{
		APIKey:   cfg.WebSearch.APIKey,
		EngineID: cfg.WebSearch.EngineID,
		Timeout:  time.Duration(cfg.WebSearch.TimeoutSec) * time.Second,
		Logger:   logger,
	})
	if webClient.Enabled() {
		logger.Info("Web-search fallback enabled")
	}

	var refiner domain.Refiner
	if cfg.Refine.Enabled {
		refiner = openaiTransport.NewRefiner(&openaiTransport.RefinerConfig{
			APIKey:  cfg.Refine.APIKey,
			BaseURL: cfg.Refine.BaseURL,
			Model:   cfg.Refine.Model,
			Logger:  logger,
		})
		logger.Info("LLM refinement enabled", zap.String("model", cfg.Refine.Model))
	}

	server := chiTransport.NewServer(
		searchSvc, autocompleteSvc, rerankEngine, selections,
		webClient, refiner, healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
