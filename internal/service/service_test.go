package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/nyashahama/shopping-agent-backend/internal/catalog"
	"github.com/nyashahama/shopping-agent-backend/internal/history"
	"github.com/nyashahama/shopping-agent-backend/internal/service"
	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
	"github.com/nyashahama/shopping-agent-backend/internal/store"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

type stubRecommender struct {
	res        shopping.Result
	err        error
	gotHistory shopping.BuyerHistory
	gotCats    []string
}

func (s *stubRecommender) Recommend(_ context.Context, h shopping.BuyerHistory, cats []string) (shopping.Result, error) {
	s.gotHistory, s.gotCats = h, cats
	return s.res, s.err
}

type stubHistory struct {
	byUser    map[string]shopping.BuyerHistory
	appendErr error
	gotUser   string
}

func (s *stubHistory) Get(_ context.Context, userID string) (shopping.BuyerHistory, error) {
	s.gotUser = userID
	h, ok := s.byUser[userID]
	if !ok {
		return shopping.BuyerHistory{}, history.ErrUnknownBuyer
	}
	return h, nil
}

func (s *stubHistory) Append(_ context.Context, userID string, item shopping.Item) (shopping.BuyerHistory, error) {
	s.gotUser = userID
	if s.appendErr != nil {
		return shopping.BuyerHistory{}, s.appendErr
	}
	h, ok := s.byUser[userID]
	if !ok {
		return shopping.BuyerHistory{}, history.ErrUnknownBuyer
	}
	h.History = append(h.History, item)
	s.byUser[userID] = h
	return h, nil
}

type failingLog struct{ service.Log }

func (failingLog) SaveRecommendation(context.Context, string, shopping.Result) (store.Recommendation, error) {
	return store.Recommendation{}, errors.New("db down")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHistory() *stubHistory {
	return &stubHistory{byUser: map[string]shopping.BuyerHistory{
		"u1": {UserID: "u1", History: []shopping.Item{{Product: "Mouse", Category: "Electronics", Price: 25}}},
	}}
}

var products = catalog.NewMemory([]shopping.Item{
	{Product: "Novel", Category: "Books", Price: 15},
	{Product: "Speaker", Category: "Electronics", Price: 140},
}, nil)

// ─── Recommend ────────────────────────────────────────────────────────────────

func TestRecommend_DefaultUser_RecordsResult(t *testing.T) {
	rec := &stubRecommender{res: shopping.Result{Justification: "ok", Category: "Books", RecommendedProducts: []shopping.Item{}}}
	hist := newHistory()
	log := store.NewMemoryLog()
	svc := service.New(rec, products, hist, log, "u1", discardLogger())

	got, err := svc.Recommend(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hist.gotUser != "u1" {
		t.Errorf("expected default user, got %q", hist.gotUser)
	}
	if rec.gotHistory.UserID != "u1" || len(rec.gotCats) != 2 {
		t.Errorf("pipeline received %+v / %v", rec.gotHistory, rec.gotCats)
	}
	if got.ID == uuid.Nil {
		t.Fatal("expected a recorded id")
	}
	stored, err := log.GetRecommendation(context.Background(), got.ID)
	if err != nil || stored.Result.Category != "Books" {
		t.Errorf("stored %+v, %v", stored, err)
	}
}

func TestRecommend_UnknownBuyer(t *testing.T) {
	svc := service.New(&stubRecommender{}, products, newHistory(), store.NewMemoryLog(), "", discardLogger())

	if _, err := svc.Recommend(context.Background(), "ghost"); !errors.Is(err, history.ErrUnknownBuyer) {
		t.Errorf("expected ErrUnknownBuyer, got %v", err)
	}
}

func TestRecommend_PipelineErrorPropagates(t *testing.T) {
	boom := errors.New("provider down")
	svc := service.New(&stubRecommender{err: boom}, products, newHistory(), store.NewMemoryLog(), "u1", discardLogger())

	_, err := svc.Recommend(context.Background(), "")
	if !errors.Is(err, boom) || !errors.Is(err, service.ErrPipeline) {
		t.Errorf("expected provider error marked as pipeline failure, got %v", err)
	}
}

func TestRecommend_LogFailureStillReturnsResult(t *testing.T) {
	rec := &stubRecommender{res: shopping.Result{Justification: "ok"}}
	svc := service.New(rec, products, newHistory(), failingLog{}, "u1", discardLogger())

	got, err := svc.Recommend(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != uuid.Nil || got.Result.Justification != "ok" {
		t.Errorf("unexpected record %+v", got)
	}
}

// ─── AddPurchase ──────────────────────────────────────────────────────────────

func TestAddPurchase(t *testing.T) {
	hist := newHistory()
	svc := service.New(&stubRecommender{}, products, hist, store.NewMemoryLog(), "u1", discardLogger())

	item := shopping.Item{Product: "Keyboard", Category: "Electronics", Price: 60}
	h, err := svc.AddPurchase(context.Background(), "", item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.History) != 2 || h.History[1] != item {
		t.Errorf("unexpected history %+v", h)
	}
}

func TestAddPurchase_InvalidItem(t *testing.T) {
	hist := newHistory()
	svc := service.New(&stubRecommender{}, products, hist, store.NewMemoryLog(), "u1", discardLogger())

	_, err := svc.AddPurchase(context.Background(), "u1", shopping.Item{Price: -1})
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if hist.gotUser != "" {
		t.Error("history must not be touched for an invalid item")
	}
}

func TestAddPurchase_PriceTooLarge(t *testing.T) {
	hist := newHistory()
	svc := service.New(&stubRecommender{}, products, hist, store.NewMemoryLog(), "u1", discardLogger())

	item := shopping.Item{Product: "Yacht", Category: "Sports", Price: shopping.MaxPrice + 1}
	_, err := svc.AddPurchase(context.Background(), "u1", item)
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if hist.gotUser != "" {
		t.Error("history must not be touched for an invalid item")
	}
}

func TestAddPurchase_UnknownBuyer(t *testing.T) {
	svc := service.New(&stubRecommender{}, products, newHistory(), store.NewMemoryLog(), "", discardLogger())

	_, err := svc.AddPurchase(context.Background(), "ghost", shopping.Item{Product: "x", Category: "y", Price: 1})
	if !errors.Is(err, history.ErrUnknownBuyer) {
		t.Errorf("expected ErrUnknownBuyer, got %v", err)
	}
}
