// Package agent sequences the two AI requests of a recommendation run around
// the deterministic ranking step. Nothing here holds per-run state; the
// category and bounds decided by Extract are passed explicitly to Justify.
package agent

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nyashahama/shopping-agent-backend/internal/ai"
	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// DefaultMaxTokens caps the output of both AI requests.
const DefaultMaxTokens = 200

// RankProducts is the single operation the intent request declares.
var RankProducts = ai.Operation{
	Name:        "rank_products",
	Description: "Gets the top 3 matching products from a category based on price range. This function must be called to retrieve actual product data.",
	Params: []ai.Param{
		{Name: "category", Type: ai.TypeString, Description: "The product category to search in", Required: true},
		{Name: "lowerBound", Type: ai.TypeNumber, Description: "The minimum price in the user's preferred range", Required: true},
		{Name: "upperBound", Type: ai.TypeNumber, Description: "The maximum price in the user's preferred range", Required: true},
	},
}

// Extraction is the outcome of one intent request. Exactly one of Intent and
// RawText is meaningful: Intent is nil when the model answered in prose.
type Extraction struct {
	Intent  *shopping.Intent
	RawText string
}

// Extractor asks the model for a category and price range.
type Extractor struct {
	client    ai.Client
	maxTokens int
}

// NewExtractor returns an Extractor. maxTokens <= 0 selects DefaultMaxTokens.
func NewExtractor(client ai.Client, maxTokens int) *Extractor {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Extractor{client: client, maxTokens: maxTokens}
}

// Extract issues the intent request. A response without a structured call is
// not an error; it is returned as RawText with a nil Intent.
func (e *Extractor) Extract(ctx context.Context, buyerHistory, categories string) (Extraction, error) {
	resp, err := e.client.GenerateStructured(ctx, intentPrompt(buyerHistory, categories), RankProducts, e.maxTokens)
	if err != nil {
		return Extraction{}, fmt.Errorf("agent: extract intent: %w", err)
	}
	if resp.Call == nil || resp.Call.Name != RankProducts.Name {
		return Extraction{RawText: resp.Text}, nil
	}

	intent := ParseIntent(resp.Call.Arguments)
	return Extraction{Intent: &intent}, nil
}

func intentPrompt(buyerHistory, categories string) string {
	return fmt.Sprintf(`Analyze the user's purchase history: %s and based on it:
1. Determine their preferred price range (lower and upper limits)
2. Recommend a product's category from: %s
3. You MUST call the %s function with the recommended category and price range.
Do not provide any text response - only call the function.`, buyerHistory, categories, RankProducts.Name)
}

// ParseIntent reads rank_products arguments. It never fails: a missing or
// non-string category becomes "", and a bound that is not an integer becomes
// absent.
func ParseIntent(args []byte) shopping.Intent {
	parsed := gjson.ParseBytes(args)

	var category string
	if c := parsed.Get("category"); c.Type == gjson.String {
		category = c.String()
	}

	return shopping.Intent{
		Category: category,
		Lower:    parseBound(parsed.Get("lowerBound")),
		Upper:    parseBound(parsed.Get("upperBound")),
	}
}

// parseBound accepts integral JSON numbers (100, 100.0) and strings holding a
// base-10 integer ("100"). Everything else is absent.
func parseBound(v gjson.Result) shopping.Bound {
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
			return shopping.None
		}
		return shopping.Some(int(f))
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return shopping.None
		}
		return shopping.Some(n)
	default:
		return shopping.None
	}
}
