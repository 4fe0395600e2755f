// Package service is the use-case layer shared by the HTTP and gRPC
// transports. It loads the buyer history and categories, runs the
// recommendation pipeline, and records the outcome.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nyashahama/shopping-agent-backend/internal/catalog"
	"github.com/nyashahama/shopping-agent-backend/internal/history"
	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
	"github.com/nyashahama/shopping-agent-backend/internal/store"
)

// ErrPipeline marks failures of the recommendation pipeline itself (the AI
// provider or the catalog), as opposed to missing inputs.
var ErrPipeline = errors.New("service: recommendation pipeline failed")

// Recommender is satisfied by *agent.Recommender.
type Recommender interface {
	Recommend(ctx context.Context, h shopping.BuyerHistory, categories []string) (shopping.Result, error)
}

// Log persists recommendation results. Implemented by *store.Postgres and
// *store.MemoryLog.
type Log interface {
	SaveRecommendation(ctx context.Context, userID string, res shopping.Result) (store.Recommendation, error)
	GetRecommendation(ctx context.Context, id uuid.UUID) (store.Recommendation, error)
}

// Service holds the dependencies for one recommendation request. Each step
// of Recommend is a plain call so the method reads top to bottom.
type Service struct {
	recommender   Recommender
	catalog       catalog.Accessor
	history       history.Store
	log           Log
	defaultUserID string
	logger        *slog.Logger
}

// New constructs a Service with all required dependencies.
func New(
	rec Recommender,
	products catalog.Accessor,
	buyers history.Store,
	log Log,
	defaultUserID string,
	logger *slog.Logger,
) *Service {
	return &Service{
		recommender:   rec,
		catalog:       products,
		history:       buyers,
		log:           log,
		defaultUserID: defaultUserID,
		logger:        logger,
	}
}

// Recommend executes the full flow for one buyer:
//
//  1. Load the buyer history.
//  2. Load the closed category set.
//  3. Run the pipeline.
//  4. Record the result.
//
// A failure to record is logged and the result is still returned with a nil
// ID; the recommendation itself succeeded.
func (s *Service) Recommend(ctx context.Context, userID string) (store.Recommendation, error) {
	userID = s.resolve(userID)
	log := s.logger.With("user_id", userID)

	h, err := s.history.Get(ctx, userID)
	if err != nil {
		return store.Recommendation{}, fmt.Errorf("service: load history: %w", err)
	}

	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return store.Recommendation{}, fmt.Errorf("service: load categories: %w", err)
	}
	log.Debug("service: loaded inputs", "purchases", len(h.History), "categories", len(categories))

	res, err := s.recommender.Recommend(ctx, h, categories)
	if err != nil {
		return store.Recommendation{}, fmt.Errorf("%w: %w", ErrPipeline, err)
	}

	rec, err := s.log.SaveRecommendation(ctx, h.UserID, res)
	if err != nil {
		log.Error("service: failed to record recommendation", "error", err)
		return store.Recommendation{UserID: h.UserID, Result: res}, nil
	}

	log.Info("service: recommendation recorded", "recommendation_id", rec.ID, "category", res.Category)
	return rec, nil
}

// AddPurchase validates item and appends it to the buyer's history.
func (s *Service) AddPurchase(ctx context.Context, userID string, item shopping.Item) (shopping.BuyerHistory, error) {
	if err := item.Validate(); err != nil {
		return shopping.BuyerHistory{}, &ValidationError{Err: err}
	}
	h, err := s.history.Append(ctx, s.resolve(userID), item)
	if err != nil {
		return shopping.BuyerHistory{}, fmt.Errorf("service: append purchase: %w", err)
	}
	return h, nil
}

// Categories returns the categories the model chooses from.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.catalog.Categories(ctx)
}

// Recommendation loads a recorded result.
func (s *Service) Recommendation(ctx context.Context, id uuid.UUID) (store.Recommendation, error) {
	return s.log.GetRecommendation(ctx, id)
}

func (s *Service) resolve(userID string) string {
	if userID == "" {
		return s.defaultUserID
	}
	return userID
}

// ValidationError wraps a rejected purchase.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "service: invalid purchase: " + e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }
