// Package ranking selects the products recommended for a category and an
// optional price range. It performs no I/O and never calls the AI.
package ranking

import (
	"sort"

	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// candidate is a catalog item outside the price range together with its
// distance to the bound it violates. idx is the item's position in the sorted
// category slice and identifies the entry when two pools overlap.
type candidate struct {
	idx  int
	item shopping.Item
	dist int
}

// ─── CORE FUNCTIONS ───────────────────────────────────────────────────────────

// Rank returns at most shopping.MaxRecommendations items of category from
// catalog.
//
// Items inside [lower, upper] come first in ascending price order. When fewer
// than three fall inside the range, the remaining slots are filled with the
// nearest items below lower and above upper, closest first; on equal distance
// the item below the range wins.
//
// The in-range pass needs both bounds. With both bounds absent no pool can be
// built and Rank returns an empty slice whatever the catalog holds.
//
// Rank never returns nil: an unknown category yields an empty slice.
func Rank(category string, lower, upper shopping.Bound, catalog []shopping.Item) []shopping.Item {
	sorted := byCategory(category, catalog)

	ranked := make([]shopping.Item, 0, shopping.MaxRecommendations)
	if lower.Valid && upper.Valid {
		for _, it := range sorted {
			if it.Price >= lower.Value && it.Price <= upper.Value {
				ranked = append(ranked, it)
			}
		}
		if len(ranked) >= shopping.MaxRecommendations {
			return ranked[:shopping.MaxRecommendations]
		}
	}

	needed := shopping.MaxRecommendations - len(ranked)
	below := lowerPool(sorted, lower, needed)
	above := upperPool(sorted, upper, needed)

	ranked = append(ranked, mergeNearest(below, above, needed)...)
	if len(ranked) > shopping.MaxRecommendations {
		ranked = ranked[:shopping.MaxRecommendations]
	}
	return ranked
}

// byCategory filters catalog to exact category matches and sorts the result by
// ascending price. Equal prices keep catalog order.
func byCategory(category string, catalog []shopping.Item) []shopping.Item {
	out := make([]shopping.Item, 0, len(catalog))
	for _, it := range catalog {
		if it.Category == category {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Price < out[b].Price
	})
	return out
}

// lowerPool returns up to limit items priced below lower, highest price first.
func lowerPool(sorted []shopping.Item, lower shopping.Bound, limit int) []candidate {
	if !lower.Valid || limit <= 0 {
		return nil
	}
	pool := make([]candidate, 0, limit)
	for idx, it := range sorted {
		if it.Price < lower.Value {
			pool = append(pool, candidate{idx: idx, item: it, dist: lower.Value - it.Price})
		}
	}
	// Descending by price; equal prices keep catalog order.
	sort.SliceStable(pool, func(a, b int) bool {
		return pool[a].item.Price > pool[b].item.Price
	})
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

// upperPool returns up to limit items priced above upper, lowest price first.
func upperPool(sorted []shopping.Item, upper shopping.Bound, limit int) []candidate {
	if !upper.Valid || limit <= 0 {
		return nil
	}
	pool := make([]candidate, 0, limit)
	for idx, it := range sorted {
		if len(pool) == limit {
			break
		}
		if it.Price > upper.Value {
			pool = append(pool, candidate{idx: idx, item: it, dist: it.Price - upper.Value})
		}
	}
	return pool
}

// mergeNearest walks both pools with two cursors and takes whichever head is
// closer to its bound, preferring below on ties, until needed items are
// taken or both pools run dry.
//
// The pools only overlap when lower > upper; an entry already taken from one
// pool is skipped in the other so the result never repeats a catalog entry.
func mergeNearest(below, above []candidate, needed int) []shopping.Item {
	out := make([]shopping.Item, 0, needed)
	taken := make(map[int]struct{}, needed)

	take := func(c candidate) {
		if _, dup := taken[c.idx]; dup {
			return
		}
		taken[c.idx] = struct{}{}
		out = append(out, c.item)
	}

	i, j := 0, 0
	for len(out) < needed && i < len(below) && j < len(above) {
		if below[i].dist <= above[j].dist {
			take(below[i])
			i++
		} else {
			take(above[j])
			j++
		}
	}
	for len(out) < needed && i < len(below) {
		take(below[i])
		i++
	}
	for len(out) < needed && j < len(above) {
		take(above[j])
		j++
	}
	return out
}
