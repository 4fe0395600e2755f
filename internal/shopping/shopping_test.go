package shopping_test

import (
	"strings"
	"testing"

	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

func TestItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    shopping.Item
		wantErr string
	}{
		{"valid", shopping.Item{Product: "Novel", Category: "Books", Price: 15}, ""},
		{"free item", shopping.Item{Product: "Sample", Category: "Books", Price: 0}, ""},
		{"largest price", shopping.Item{Product: "Yacht", Category: "Sports", Price: shopping.MaxPrice}, ""},
		{"missing product", shopping.Item{Category: "Books", Price: 1}, "product is required"},
		{"blank category", shopping.Item{Product: "Novel", Category: "  ", Price: 1}, "category is required"},
		{"negative price", shopping.Item{Product: "Novel", Category: "Books", Price: -1}, "price must be >= 0"},
		{"price beyond int32", shopping.Item{Product: "Yacht", Category: "Sports", Price: shopping.MaxPrice + 1}, "price must be <="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
