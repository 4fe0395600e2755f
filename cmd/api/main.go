package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	_ "github.com/lib/pq" // postgres driver
	"github.com/openai/openai-go/v2/option"
	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"

	"github.com/nyashahama/shopping-agent-backend/internal/agent"
	"github.com/nyashahama/shopping-agent-backend/internal/ai"
	"github.com/nyashahama/shopping-agent-backend/internal/api"
	"github.com/nyashahama/shopping-agent-backend/internal/catalog"
	"github.com/nyashahama/shopping-agent-backend/internal/config"
	"github.com/nyashahama/shopping-agent-backend/internal/db"
	"github.com/nyashahama/shopping-agent-backend/internal/grpcapi"
	"github.com/nyashahama/shopping-agent-backend/internal/history"
	"github.com/nyashahama/shopping-agent-backend/internal/service"
	"github.com/nyashahama/shopping-agent-backend/internal/store"
	"github.com/nyashahama/shopping-agent-backend/internal/worker"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "grpc", cfg.GRPCEnabled)

	// Root context cancelled by OS signal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Storage ───────────────────────────────────────────────────────────────
	// Postgres when DATABASE_URL is set, otherwise the JSON/parquet files.
	var (
		products catalog.Accessor
		buyers   history.Store
		recLog   service.Log
		pruner   worker.Pruner
	)
	if cfg.DatabaseURL != "" {
		pool, err := openDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()

		st := store.New(pool, cfg.DefaultUserID)
		if cfg.DefaultUserID != "" {
			if err := st.EnsureBuyer(ctx, cfg.DefaultUserID); err != nil {
				return fmt.Errorf("database: %w", err)
			}
		}
		products, buyers, recLog, pruner = st, st, st, st
		logger.Info("database connected")
	} else {
		mem, err := catalog.Open(cfg.CatalogPath, cfg.CategoriesPath)
		if err != nil {
			return err
		}
		products = mem
		buyers = history.NewFile(cfg.HistoryPath)
		memLog := store.NewMemoryLog()
		recLog, pruner = memLog, memLog
		logger.Info("file storage", "catalog", cfg.CatalogPath, "products", mem.Len(), "history", cfg.HistoryPath)
	}

	// ── AI ────────────────────────────────────────────────────────────────────
	client, err := buildAIClient(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("ai: %w", err)
	}

	rec := agent.NewRecommender(client, products, cfg.MaxOutputTokens, logger)
	svc := service.New(rec, products, buyers, recLog, cfg.DefaultUserID, logger)

	// ── Background sweeper ────────────────────────────────────────────────────
	if cfg.RecommendationRetention > 0 {
		sweeper := worker.NewSweeper(pruner, worker.SweeperConfig{
			Retention: cfg.RecommendationRetention,
		}, logger)
		go sweeper.Start(ctx)
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(svc, api.Config{
		Env:       cfg.Env,
		JWTSecret: cfg.JWTSecret,
		// Two AI calls per recommendation, plus slack for storage.
		RequestTimeout: 2*cfg.AIRequestTimeout + 10*time.Second,
	}, logger)

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.AIRequestTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── Listener ──────────────────────────────────────────────────────────────
	// gRPC and HTTP share one port; cmux routes on the HTTP/2 content-type.
	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	mux := cmux.New(lis)

	var grpcSrv *grpc.Server
	serverErr := make(chan error, 3)
	if cfg.GRPCEnabled {
		grpcSrv = grpcapi.NewServer(svc, logger)
		grpcL := mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
		go func() {
			if err := grpcSrv.Serve(grpcL); err != nil && !errors.Is(err, grpc.ErrServerStopped) && !errors.Is(err, cmux.ErrListenerClosed) {
				serverErr <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}
	httpL := mux.Match(cmux.Any())

	go func() {
		logger.Info("server listening", "addr", lis.Addr().String())
		if err := srv.Serve(httpL); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, cmux.ErrListenerClosed) {
			serverErr <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		if err := mux.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
			serverErr <- fmt.Errorf("cmux: %w", err)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	mux.Close()

	logger.Info("shutdown complete")
	return nil
}

// buildAIClient chains every configured provider in the order DeepSeek,
// OpenAI, Ark, Anthropic. Later providers are only tried when earlier ones
// fail at the transport level.
func buildAIClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ai.Client, error) {
	var (
		clients []ai.Client
		names   []string
	)
	timeout := option.WithRequestTimeout(cfg.AIRequestTimeout)

	if cfg.DeepSeekAPIKey != "" {
		clients = append(clients, ai.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekModel, timeout))
		names = append(names, "deepseek")
	}
	if cfg.OpenAIAPIKey != "" {
		clients = append(clients, ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, timeout))
		names = append(names, "openai")
	}
	if cfg.ArkAPIKey != "" {
		c, err := ai.NewArkClient(ctx, cfg.ArkAPIKey, cfg.ArkModel, cfg.AIRequestTimeout)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
		names = append(names, "ark")
	}
	if cfg.AnthropicAPIKey != "" {
		clients = append(clients, ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel,
			anthropicoption.WithRequestTimeout(cfg.AIRequestTimeout)))
		names = append(names, "anthropic")
	}

	client, err := ai.Chain(logger, clients...)
	if err != nil {
		return nil, err
	}
	logger.Info("ai: providers configured", "order", names)
	return client, nil
}

// openDB opens the connection pool, verifies it, and applies the schema.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	// Tune the connection pool.
	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	// Verify the connection is reachable before proceeding.
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := db.Migrate(pingCtx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return pool, nil
}
