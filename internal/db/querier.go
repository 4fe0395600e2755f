package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Querier interface {
	BuyerExists(ctx context.Context, userID string) (bool, error)
	CreateBuyer(ctx context.Context, userID string) error
	CreatePurchase(ctx context.Context, arg CreatePurchaseParams) (Purchase, error)
	CreateRecommendation(ctx context.Context, arg CreateRecommendationParams) (Recommendation, error)
	DeleteRecommendationsBefore(ctx context.Context, before time.Time) (int64, error)
	GetRecommendation(ctx context.Context, id uuid.UUID) (Recommendation, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListProductCategories(ctx context.Context) ([]string, error)
	ListProductsByCategory(ctx context.Context, category string) ([]Product, error)
	ListPurchasesByUser(ctx context.Context, userID string) ([]Purchase, error)
}

var _ Querier = (*Queries)(nil)
