package catalog

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// Row is the parquet layout of one catalog entry.
type Row struct {
	Product  string `parquet:"product"`
	Category string `parquet:"category"`
	Price    int64  `parquet:"price"`
}

// LoadParquet reads a parquet file of Rows.
func LoadParquet(path, categoriesPath string) (*Memory, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read parquet %s: %w", path, err)
	}
	items := make([]shopping.Item, len(rows))
	for i, r := range rows {
		if r.Price < 0 || r.Price > shopping.MaxPrice {
			return nil, fmt.Errorf("catalog: %s row %d: price %d out of range", path, i, r.Price)
		}
		items[i] = shopping.Item{Product: r.Product, Category: r.Category, Price: int(r.Price)}
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

// WriteParquet writes items in the layout LoadParquet reads. Invalid items
// are rejected and nothing is written.
func WriteParquet(path string, items []shopping.Item) error {
	if err := validateItems(path, items); err != nil {
		return err
	}
	rows := make([]Row, len(items))
	for i, it := range items {
		rows[i] = Row{Product: it.Product, Category: it.Category, Price: int64(it.Price)}
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("catalog: write parquet %s: %w", path, err)
	}
	return nil
}
