// Package api implements the HTTP layer for the shopping agent. Handlers are
// methods on *Server. Each handler file is responsible for one resource group
// and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
	"github.com/nyashahama/shopping-agent-backend/internal/store"
)

// Service is the use-case layer the handlers call. *service.Service
// satisfies it.
type Service interface {
	Recommend(ctx context.Context, userID string) (store.Recommendation, error)
	AddPurchase(ctx context.Context, userID string, item shopping.Item) (shopping.BuyerHistory, error)
	Categories(ctx context.Context) ([]string, error)
	Recommendation(ctx context.Context, id uuid.UUID) (store.Recommendation, error)
}

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// JWTSecret enables bearer-token auth on purchase writes when non-empty.
	JWTSecret string

	// RequestTimeout bounds every request. A recommendation makes two AI
	// calls, so this should exceed twice the AI timeout.
	RequestTimeout time.Duration
}

// Server holds all shared dependencies.
type Server struct {
	svc    Service
	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.Server.
func NewServer(svc Service, cfg Config, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	s := &Server{
		svc:    svc,
		cfg:    cfg,
		logger: logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Get("/shoppingagent", s.handleRecommend)

		// Purchase writes require a bearer token when JWT_SECRET is set.
		r.With(s.requireBearer).Post("/shoppingagent", s.handleAddPurchase)

		r.Get("/categories", s.handleCategories)
		r.Get("/recommendations/{id}", s.handleGetRecommendation)
	})

	return r
}
