// Package shopping holds the value types shared by every stage of the
// recommendation pipeline. It imports nothing from internal/ so that ranking,
// agent, catalog, and store can all depend on it without cycles.
package shopping

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NoJustification is the placeholder used whenever the AI returns no usable
// explanation text.
const NoJustification = "No justification provided."

// MaxPrice is the largest price an item may carry; prices are stored as
// 32-bit integers.
const MaxPrice = math.MaxInt32

// MaxRecommendations is the number of products a single run recommends.
const MaxRecommendations = 3

// Item is one catalog product or one past purchase. Items have no identity
// beyond their fields; two equal items are still distinct entries.
type Item struct {
	Product  string `json:"product"`
	Category string `json:"category"`
	Price    int    `json:"price"`
}

// Validate rejects items that cannot be recorded as a purchase.
func (it Item) Validate() error {
	var errs []error
	if strings.TrimSpace(it.Product) == "" {
		errs = append(errs, errors.New("product is required"))
	}
	if strings.TrimSpace(it.Category) == "" {
		errs = append(errs, errors.New("category is required"))
	}
	if it.Price < 0 {
		errs = append(errs, errors.New("price must be >= 0"))
	}
	if it.Price > MaxPrice {
		errs = append(errs, fmt.Errorf("price must be <= %d", MaxPrice))
	}
	return errors.Join(errs...)
}

// BuyerHistory is everything known about one buyer's past purchases, oldest
// first.
type BuyerHistory struct {
	UserID  string `json:"user_id"`
	History []Item `json:"history"`
}

// Prompt renders the history the way it is handed to the AI: the same JSON
// document the history store persists.
func (h BuyerHistory) Prompt() string {
	if h.History == nil {
		h.History = []Item{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		// Only strings and ints; Marshal cannot fail here.
		return "{}"
	}
	return string(b)
}

// Bound is an optional integer price bound.
type Bound struct {
	Value int
	Valid bool
}

// Some returns a present bound.
func Some(v int) Bound { return Bound{Value: v, Valid: true} }

// None is the absent bound.
var None = Bound{}

// String renders the bound for prompts; absent bounds render as "?".
func (b Bound) String() string {
	if !b.Valid {
		return "?"
	}
	return strconv.Itoa(b.Value)
}

// Intent is the AI-derived decision for one recommendation run.
type Intent struct {
	Category string
	Lower    Bound
	Upper    Bound
}

// Result is the terminal artifact of one orchestration run.
//
// RecommendedProducts is nil when ranking never ran (the model declined to
// return a structured intent) and an empty, non-nil slice when ranking ran but
// the category had no products.
type Result struct {
	RecommendedProducts []Item `json:"recommendedProducts"`
	Justification       string `json:"justification"`
	Category            string `json:"category"`
}
