package store

import (
	"context"
	"fmt"

	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// ListByCategory returns products whose category matches exactly, in
// insertion order. It implements catalog.Accessor.
func (s *Postgres) ListByCategory(ctx context.Context, category string) ([]shopping.Item, error) {
	rows, err := s.q.ListProductsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("store: list products %q: %w", category, err)
	}
	items := make([]shopping.Item, len(rows))
	for i, r := range rows {
		items[i] = shopping.Item{Product: r.Product, Category: r.Category, Price: int(r.Price)}
	}
	return items, nil
}

// Categories returns the configured categories, or the distinct product
// categories when the categories table is empty.
func (s *Postgres) Categories(ctx context.Context) ([]string, error) {
	names, err := s.q.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	if len(names) > 0 {
		return names, nil
	}
	names, err = s.q.ListProductCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list product categories: %w", err)
	}
	return names, nil
}
