// Package history owns buyer purchase histories. The recommendation pipeline
// only ever reads a snapshot; appends happen here.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// ErrUnknownBuyer is returned when a store holds no history for a user ID.
var ErrUnknownBuyer = errors.New("history: unknown buyer")

// Store reads and extends buyer histories. store.Postgres implements it too.
type Store interface {
	// Get returns a snapshot of userID's history.
	Get(ctx context.Context, userID string) (shopping.BuyerHistory, error)

	// Append records item as userID's newest purchase and returns the
	// updated history.
	Append(ctx context.Context, userID string, item shopping.Item) (shopping.BuyerHistory, error)
}

// File is a Store over a single-buyer JSON document:
//
//	{"user_id": "...", "history": [{"product": ..., "category": ..., "price": ...}]}
//
// Every Append rewrites the whole file. Writes are serialised within this
// process only.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a File store for path. The file is read on every call, so
// edits made while the service runs are picked up.
func NewFile(path string) *File {
	return &File{path: path}
}

// Get returns the stored history. An empty userID matches the stored buyer.
func (f *File) Get(_ context.Context, userID string) (shopping.BuyerHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.load(userID)
}

// Append adds item to the end of the stored history.
func (f *File) Append(_ context.Context, userID string, item shopping.Item) (shopping.BuyerHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	h, err := f.load(userID)
	if err != nil {
		return shopping.BuyerHistory{}, err
	}
	h.History = append(h.History, item)

	raw, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return shopping.BuyerHistory{}, fmt.Errorf("history: encode: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return shopping.BuyerHistory{}, fmt.Errorf("history: write %s: %w", f.path, err)
	}
	return h, nil
}

// load must be called with mu held.
func (f *File) load(userID string) (shopping.BuyerHistory, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return shopping.BuyerHistory{}, fmt.Errorf("history: read %s: %w", f.path, err)
	}
	var h shopping.BuyerHistory
	if err := json.Unmarshal(raw, &h); err != nil {
		return shopping.BuyerHistory{}, fmt.Errorf("history: decode %s: %w", f.path, err)
	}
	if userID != "" && userID != h.UserID {
		return shopping.BuyerHistory{}, ErrUnknownBuyer
	}
	return h, nil
}
