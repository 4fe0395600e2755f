package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nyashahama/shopping-agent-backend/internal/ai"
	"github.com/nyashahama/shopping-agent-backend/internal/catalog"
	"github.com/nyashahama/shopping-agent-backend/internal/ranking"
	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// Recommender runs the full pipeline: intent, ranking, justification.
// It is safe for concurrent use; every run works on its own values.
type Recommender struct {
	extractor *Extractor
	justifier *Justifier
	catalog   catalog.Accessor
	logger    *slog.Logger
}

// NewRecommender wires a Recommender around one AI client and one catalog.
func NewRecommender(client ai.Client, products catalog.Accessor, maxTokens int, logger *slog.Logger) *Recommender {
	return &Recommender{
		extractor: NewExtractor(client, maxTokens),
		justifier: NewJustifier(client, maxTokens),
		catalog:   products,
		logger:    logger,
	}
}

// Recommend produces the result for one buyer. AI transport failures are
// returned as errors and nothing is retried.
func (r *Recommender) Recommend(ctx context.Context, history shopping.BuyerHistory, categories []string) (shopping.Result, error) {
	start := time.Now()
	prompt := history.Prompt()

	extraction, err := r.extractor.Extract(ctx, prompt, strings.Join(categories, ", "))
	if err != nil {
		return shopping.Result{}, err
	}

	if extraction.Intent == nil {
		r.logger.Warn("agent: no function call detected, returning model text",
			"user_id", history.UserID,
			"text", extraction.RawText,
		)
		justification := extraction.RawText
		if justification == "" {
			justification = shopping.NoJustification
		}
		return shopping.Result{Justification: justification}, nil
	}

	intent := *extraction.Intent
	r.logger.Info("agent: intent extracted",
		"user_id", history.UserID,
		"category", intent.Category,
		"lower_bound", intent.Lower.String(),
		"upper_bound", intent.Upper.String(),
	)

	items, err := r.catalog.ListByCategory(ctx, intent.Category)
	if err != nil {
		return shopping.Result{}, fmt.Errorf("agent: list %q: %w", intent.Category, err)
	}
	ranked := ranking.Rank(intent.Category, intent.Lower, intent.Upper, items)

	justification, err := r.justifier.Justify(ctx, prompt, intent)
	if err != nil {
		return shopping.Result{}, err
	}

	r.logger.Info("agent: recommendation ready",
		"user_id", history.UserID,
		"category", intent.Category,
		"products", len(ranked),
		"justification", justification,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return shopping.Result{
		RecommendedProducts: ranked,
		Justification:       justification,
		Category:            intent.Category,
	}, nil
}
