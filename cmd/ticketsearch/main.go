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

	"github.com/kontur-labs/ticketsearch/internal/config"
	dbRedis "github.com/kontur-labs/ticketsearch/internal/db/redis"
	"github.com/kontur-labs/ticketsearch/internal/domain"
	logpkg "github.com/kontur-labs/ticketsearch/internal/logger"
	"github.com/kontur-labs/ticketsearch/internal/metrics"
	indexrepo "github.com/kontur-labs/ticketsearch/internal/repository/index"
	searchrepo "github.com/kontur-labs/ticketsearch/internal/repository/search"
	chiTransport "github.com/kontur-labs/ticketsearch/internal/transport/chi"
	githubTransport "github.com/kontur-labs/ticketsearch/internal/transport/github"
	openaiEmb "github.com/kontur-labs/ticketsearch/internal/transport/openai"
	healthuc "github.com/kontur-labs/ticketsearch/internal/usecase/health"
	publishuc "github.com/kontur-labs/ticketsearch/internal/usecase/publish"
	schemauc "github.com/kontur-labs/ticketsearch/internal/usecase/schema"
	searchuc "github.com/kontur-labs/ticketsearch/internal/usecase/search"
	"github.com/kontur-labs/ticketsearch/internal/version"
)

func main() {
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

	logger.Info("Starting ticketsearch server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("enabled", cfg.Enabled),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
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

	metrics.Register()

	gate := domain.NewGate(cfg.Enabled, cfg.Configured())

	// Optional embedder. Without it the engine runs keyword-only.
	var (
		embedder  publishuc.Embedder
		healthEmb healthuc.EmbeddingChecker
		vectorDim int
	)
	if cfg.Embedding.APIKey != "" {
		emb := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
		embedder = emb
		healthEmb = emb
		vectorDim = cfg.Embedding.Dimensions
		logger.Info("Embedder created",
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Info("No embedding provider configured, running keyword-only")
	}

	// Optional external tracker refetcher.
	var (
		refetcher     publishuc.Refetcher
		healthTracker healthuc.TrackerChecker
	)
	if cfg.External.GitHubToken != "" || cfg.External.GitHubBaseURL != "" {
		gh, err := githubTransport.New(&githubTransport.Config{
			Token:   cfg.External.GitHubToken,
			BaseURL: cfg.External.GitHubBaseURL,
		})
		if err != nil {
			logger.Fatal("Failed to create github client", zap.Error(err))
		}
		refetcher = gh
		healthTracker = gh
	}

	schemaSvc := schemauc.New(store, cfg.Storage.KeyPrefix, vectorDim, schemauc.HNSW{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})

	indexRepo := indexrepo.New(store, cfg.Storage.KeyPrefix)
	searchRepo := searchrepo.New(store, cfg.Storage.KeyPrefix)

	serializer := publishuc.NewSerializer(refetcher, logger)
	publishSvc := publishuc.NewService(gate, indexRepo, schemaSvc, serializer, embedder)

	var searchEmb searchuc.Embedder
	if embedder != nil {
		searchEmb = embedder
	}
	searchSvc := searchuc.NewService(gate, searchRepo, schemaSvc, searchEmb)

	healthSvc := healthuc.New(store, healthEmb, healthTracker)

	// The server binary has no tracker record source, so the sync route is
	// not mounted. Deployments that wire a Source get it via sync.NewService.
	server := chiTransport.NewServer(publishSvc, searchSvc, nil, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

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

// requestLogMiddleware emits a canonical log line per request and propagates X-Request-ID.
func requestLogMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
