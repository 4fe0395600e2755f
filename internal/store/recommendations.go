package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/shopping-agent-backend/internal/db"
	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// ErrRecommendationNotFound is returned by GetRecommendation for unknown IDs.
var ErrRecommendationNotFound = errors.New("store: recommendation not found")

// Recommendation is one stored pipeline result.
type Recommendation struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	Result    shopping.Result `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// ─── POSTGRES ────────────────────────────────────────────────────────────────

// SaveRecommendation stores res under a fresh UUID.
func (s *Postgres) SaveRecommendation(ctx context.Context, userID string, res shopping.Result) (Recommendation, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return Recommendation{}, fmt.Errorf("store: encode recommendation: %w", err)
	}

	row, err := s.q.CreateRecommendation(ctx, db.CreateRecommendationParams{
		ID:       uuid.New(),
		UserID:   userID,
		Category: res.Category,
		Result:   pqtype.NullRawMessage{RawMessage: raw, Valid: true},
	})
	if err != nil {
		return Recommendation{}, fmt.Errorf("store: insert recommendation: %w", err)
	}
	return toRecommendation(row)
}

// GetRecommendation loads a stored result.
func (s *Postgres) GetRecommendation(ctx context.Context, id uuid.UUID) (Recommendation, error) {
	row, err := s.q.GetRecommendation(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Recommendation{}, ErrRecommendationNotFound
	}
	if err != nil {
		return Recommendation{}, fmt.Errorf("store: get recommendation: %w", err)
	}
	return toRecommendation(row)
}

// PruneRecommendations deletes results created before cutoff and reports how
// many were removed.
func (s *Postgres) PruneRecommendations(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.q.DeleteRecommendationsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("store: prune recommendations: %w", err)
	}
	return n, nil
}

func toRecommendation(row db.Recommendation) (Recommendation, error) {
	rec := Recommendation{ID: row.ID, UserID: row.UserID, CreatedAt: row.CreatedAt}
	if !row.Result.Valid {
		rec.Result.Category = row.Category
		return rec, nil
	}
	if err := json.Unmarshal(row.Result.RawMessage, &rec.Result); err != nil {
		return Recommendation{}, fmt.Errorf("store: decode recommendation %s: %w", row.ID, err)
	}
	return rec, nil
}

// ─── IN-MEMORY ───────────────────────────────────────────────────────────────

// MemoryLog keeps recommendations in process memory. It is used when no
// database is configured; entries are lost on restart.
type MemoryLog struct {
	mu   sync.RWMutex
	recs map[uuid.UUID]Recommendation
	now  func() time.Time
}

// NewMemoryLog returns an empty MemoryLog.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{recs: make(map[uuid.UUID]Recommendation), now: time.Now}
}

func (m *MemoryLog) SaveRecommendation(_ context.Context, userID string, res shopping.Result) (Recommendation, error) {
	rec := Recommendation{ID: uuid.New(), UserID: userID, Result: res, CreatedAt: m.now().UTC()}

	m.mu.Lock()
	m.recs[rec.ID] = rec
	m.mu.Unlock()
	return rec, nil
}

func (m *MemoryLog) GetRecommendation(_ context.Context, id uuid.UUID) (Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.recs[id]
	if !ok {
		return Recommendation{}, ErrRecommendationNotFound
	}
	return rec, nil
}

func (m *MemoryLog) PruneRecommendations(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, rec := range m.recs {
		if rec.CreatedAt.Before(cutoff) {
			delete(m.recs, id)
			n++
		}
	}
	return n, nil
}
