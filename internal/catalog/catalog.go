// Package catalog provides read-only access to the products that can be
// recommended. Implementations return snapshots: callers may keep and reorder
// the slices they receive.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// Accessor is what the recommendation pipeline reads the catalog through.
// store.Postgres implements it as well.
type Accessor interface {
	ListByCategory(ctx context.Context, category string) ([]shopping.Item, error)
	Categories(ctx context.Context) ([]string, error)
}

// Memory is an in-process catalog. The zero value is an empty catalog.
type Memory struct {
	items      []shopping.Item
	categories []string
}

// NewMemory copies items into a new catalog. When categories is nil the
// distinct item categories are used, in first-seen order.
func NewMemory(items []shopping.Item, categories []string) *Memory {
	m := &Memory{items: append([]shopping.Item(nil), items...)}
	if categories != nil {
		m.categories = append([]string(nil), categories...)
	} else {
		m.categories = distinctCategories(items)
	}
	return m
}

// ListByCategory returns the items whose category matches exactly, in
// catalog order.
func (m *Memory) ListByCategory(_ context.Context, category string) ([]shopping.Item, error) {
	var out []shopping.Item
	for _, it := range m.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out, nil
}

// Categories returns the closed set of categories the model may choose from.
func (m *Memory) Categories(_ context.Context) ([]string, error) {
	return append([]string(nil), m.categories...), nil
}

// Len reports the number of catalog entries.
func (m *Memory) Len() int { return len(m.items) }

// Items returns a copy of every entry in catalog order.
func (m *Memory) Items() []shopping.Item {
	return append([]shopping.Item(nil), m.items...)
}

func distinctCategories(items []shopping.Item) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, it := range items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}

// ─── FILE LOADERS ────────────────────────────────────────────────────────────

// Open loads the catalog at path, choosing the parquet reader for a
// ".parquet" extension and JSON otherwise.
func Open(path, categoriesPath string) (*Memory, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return LoadParquet(path, categoriesPath)
	}
	return LoadJSON(path, categoriesPath)
}

// LoadJSON reads a JSON array of items. Keys match case-insensitively, so
// {"Product": ..., "Price": ...} is accepted as well. categoriesPath is
// optional; see loadCategories.
func LoadJSON(path, categoriesPath string) (*Memory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var items []shopping.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	if err := validateItems(path, items); err != nil {
		return nil, err
	}
	categories, err := loadCategories(categoriesPath)
	if err != nil {
		return nil, err
	}
	return NewMemory(items, categories), nil
}

// validateItems rejects the whole file when any entry is invalid, naming the
// first offending row.
func validateItems(path string, items []shopping.Item) error {
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("catalog: %s row %d: %w", path, i, err)
		}
	}
	return nil
}

// loadCategories reads a JSON array of category names. An empty path or a
// missing file yields nil so the catalog derives categories itself.
func loadCategories(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var categories []string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return categories, nil
}
