package store_test

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/nyashahama/shopping-agent-backend/internal/history"
	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
	"github.com/nyashahama/shopping-agent-backend/internal/store"
)

// ─── TEST INFRASTRUCTURE ──────────────────────────────────────────────────────

// newMock returns a store over a sqlmock connection and checks that every
// expectation was met when the test ends.
func newMock(t *testing.T, defaultUserID string) (*store.Postgres, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		conn.Close()
	})
	return store.New(conn, defaultUserID), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var purchaseCols = []string{"id", "user_id", "product", "category", "price", "created_at"}

func expectBuyer(mock sqlmock.Sqlmock, userID string, exists bool) {
	mock.ExpectQuery(q("SELECT EXISTS")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

func TestListByCategory(t *testing.T) {
	st, mock := newMock(t, "")
	mock.ExpectQuery(q("FROM products")).
		WithArgs("Books").
		WillReturnRows(sqlmock.NewRows([]string{"id", "product", "category", "price"}).
			AddRow(1, "Novel", "Books", 15).
			AddRow(2, "Atlas", "Books", 40))

	got, err := st.ListByCategory(context.Background(), "Books")
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	want := []shopping.Item{
		{Product: "Novel", Category: "Books", Price: 15},
		{Product: "Atlas", Category: "Books", Price: 40},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestListByCategory_QueryError(t *testing.T) {
	st, mock := newMock(t, "")
	mock.ExpectQuery(q("FROM products")).WillReturnError(errors.New("conn reset"))

	if _, err := st.ListByCategory(context.Background(), "Books"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCategories_FromTable(t *testing.T) {
	st, mock := newMock(t, "")
	mock.ExpectQuery(q("FROM categories")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow([]byte("{Books,Electronics}")))

	got, err := st.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if want := []string{"Books", "Electronics"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCategories_FallsBackToProducts(t *testing.T) {
	st, mock := newMock(t, "")
	mock.ExpectQuery(q("FROM categories")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow([]byte("{}")))
	mock.ExpectQuery(q("GROUP BY category")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow([]byte("{Toys}")))

	got, err := st.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if want := []string{"Toys"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// ─── Buyer history ────────────────────────────────────────────────────────────

func TestGet_DefaultUser(t *testing.T) {
	st, mock := newMock(t, "u1")
	now := time.Now()
	expectBuyer(mock, "u1", true)
	mock.ExpectQuery(q("FROM purchases")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(purchaseCols).
			AddRow(1, "u1", "Mouse", "Electronics", 25, now))

	h, err := st.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := shopping.BuyerHistory{
		UserID:  "u1",
		History: []shopping.Item{{Product: "Mouse", Category: "Electronics", Price: 25}},
	}
	if !reflect.DeepEqual(h, want) {
		t.Errorf("got %+v, want %+v", h, want)
	}
}

func TestGet_UnknownBuyer(t *testing.T) {
	st, mock := newMock(t, "")
	expectBuyer(mock, "ghost", false)

	if _, err := st.Get(context.Background(), "ghost"); !errors.Is(err, history.ErrUnknownBuyer) {
		t.Errorf("expected ErrUnknownBuyer, got %v", err)
	}
}

func TestGet_NoUserAndNoDefault(t *testing.T) {
	st, _ := newMock(t, "")

	if _, err := st.Get(context.Background(), ""); !errors.Is(err, history.ErrUnknownBuyer) {
		t.Errorf("expected ErrUnknownBuyer, got %v", err)
	}
}

func TestAppend_CommitsAndReturnsUpdatedHistory(t *testing.T) {
	st, mock := newMock(t, "")
	now := time.Now()

	mock.ExpectBegin()
	expectBuyer(mock, "u1", true)
	mock.ExpectQuery(q("INSERT INTO purchases")).
		WithArgs("u1", "Keyboard", "Electronics", 60).
		WillReturnRows(sqlmock.NewRows(purchaseCols).AddRow(2, "u1", "Keyboard", "Electronics", 60, now))
	mock.ExpectQuery(q("FROM purchases")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(purchaseCols).
			AddRow(1, "u1", "Mouse", "Electronics", 25, now).
			AddRow(2, "u1", "Keyboard", "Electronics", 60, now))
	mock.ExpectCommit()

	item := shopping.Item{Product: "Keyboard", Category: "Electronics", Price: 60}
	h, err := st.Append(context.Background(), "u1", item)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(h.History) != 2 || h.History[1] != item {
		t.Errorf("unexpected history %+v", h)
	}
}

func TestAppend_UnknownBuyerRollsBack(t *testing.T) {
	st, mock := newMock(t, "")

	mock.ExpectBegin()
	expectBuyer(mock, "ghost", false)
	mock.ExpectRollback()

	_, err := st.Append(context.Background(), "ghost", shopping.Item{Product: "x", Category: "y", Price: 1})
	if !errors.Is(err, history.ErrUnknownBuyer) {
		t.Errorf("expected ErrUnknownBuyer, got %v", err)
	}
}

func TestAppend_RejectsPriceBeyondColumnRange(t *testing.T) {
	st, _ := newMock(t, "")

	// 2^32+100 would wrap to 100 in an INTEGER column.
	item := shopping.Item{Product: "Yacht", Category: "Sports", Price: 4294967396}
	if _, err := st.Append(context.Background(), "u1", item); err == nil {
		t.Fatal("expected error for out-of-range price")
	}
}

func TestAppend_InsertFailureRollsBack(t *testing.T) {
	st, mock := newMock(t, "")

	mock.ExpectBegin()
	expectBuyer(mock, "u1", true)
	mock.ExpectQuery(q("INSERT INTO purchases")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if _, err := st.Append(context.Background(), "u1", shopping.Item{Product: "x", Category: "y", Price: 1}); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnsureBuyer(t *testing.T) {
	st, mock := newMock(t, "")
	mock.ExpectExec(q("INSERT INTO buyers")).
		WithArgs("u9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.EnsureBuyer(context.Background(), "u9"); err != nil {
		t.Fatalf("EnsureBuyer: %v", err)
	}
}

// ─── Recommendation log ───────────────────────────────────────────────────────

var recCols = []string{"id", "user_id", "category", "result", "created_at"}

func TestSaveRecommendation_RoundTripsResultAsJSONB(t *testing.T) {
	st, mock := newMock(t, "")
	id := uuid.New()
	now := time.Now()
	body := []byte(`{"recommendedProducts":[{"product":"Novel","category":"Books","price":15}],"justification":"fits","category":"Books"}`)

	mock.ExpectQuery(q("INSERT INTO recommendations")).
		WithArgs(sqlmock.AnyArg(), "u1", "Books", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(recCols).AddRow(id.String(), "u1", "Books", body, now))

	res := shopping.Result{
		RecommendedProducts: []shopping.Item{{Product: "Novel", Category: "Books", Price: 15}},
		Justification:       "fits",
		Category:            "Books",
	}
	rec, err := st.SaveRecommendation(context.Background(), "u1", res)
	if err != nil {
		t.Fatalf("SaveRecommendation: %v", err)
	}
	if rec.ID != id {
		t.Errorf("id: got %s, want %s", rec.ID, id)
	}
	if !reflect.DeepEqual(rec.Result, res) {
		t.Errorf("result: got %+v, want %+v", rec.Result, res)
	}
}

func TestGetRecommendation_NotFound(t *testing.T) {
	st, mock := newMock(t, "")
	id := uuid.New()
	mock.ExpectQuery(q("FROM recommendations")).
		WithArgs(id.String()).
		WillReturnError(sql.ErrNoRows)

	if _, err := st.GetRecommendation(context.Background(), id); !errors.Is(err, store.ErrRecommendationNotFound) {
		t.Errorf("expected ErrRecommendationNotFound, got %v", err)
	}
}

func TestGetRecommendation_NullResult(t *testing.T) {
	st, mock := newMock(t, "")
	id := uuid.New()
	mock.ExpectQuery(q("FROM recommendations")).
		WillReturnRows(sqlmock.NewRows(recCols).AddRow(id.String(), "u1", "Books", nil, time.Now()))

	rec, err := st.GetRecommendation(context.Background(), id)
	if err != nil {
		t.Fatalf("GetRecommendation: %v", err)
	}
	if rec.Result.Category != "Books" || rec.Result.RecommendedProducts != nil {
		t.Errorf("unexpected result %+v", rec.Result)
	}
}

func TestMemoryLog(t *testing.T) {
	log := store.NewMemoryLog()
	res := shopping.Result{Justification: "text only"}

	rec, err := log.SaveRecommendation(context.Background(), "u1", res)
	if err != nil {
		t.Fatalf("SaveRecommendation: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Error("expected a generated id")
	}

	got, err := log.GetRecommendation(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetRecommendation: %v", err)
	}
	if got.UserID != "u1" || got.Result.Justification != "text only" {
		t.Errorf("unexpected record %+v", got)
	}

	if _, err := log.GetRecommendation(context.Background(), uuid.New()); !errors.Is(err, store.ErrRecommendationNotFound) {
		t.Errorf("expected ErrRecommendationNotFound, got %v", err)
	}
}

func TestPruneRecommendations(t *testing.T) {
	st, mock := newMock(t, "")
	cutoff := time.Now().Add(-24 * time.Hour)
	mock.ExpectExec(q("DELETE FROM recommendations")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := st.PruneRecommendations(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("PruneRecommendations: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 rows pruned, got %d", n)
	}
}

func TestMemoryLog_Prune(t *testing.T) {
	log := store.NewMemoryLog()
	old, _ := log.SaveRecommendation(context.Background(), "u1", shopping.Result{Category: "Books"})

	cutoff := time.Now().Add(time.Minute)
	n, err := log.PruneRecommendations(context.Background(), cutoff)
	if err != nil || n != 1 {
		t.Fatalf("got %d, %v", n, err)
	}
	if _, err := log.GetRecommendation(context.Background(), old.ID); !errors.Is(err, store.ErrRecommendationNotFound) {
		t.Errorf("expected pruned record to be gone, got %v", err)
	}

	fresh, _ := log.SaveRecommendation(context.Background(), "u1", shopping.Result{})
	if n, _ := log.PruneRecommendations(context.Background(), time.Now().Add(-time.Hour)); n != 0 {
		t.Errorf("expected nothing pruned, got %d", n)
	}
	if _, err := log.GetRecommendation(context.Background(), fresh.ID); err != nil {
		t.Errorf("fresh record pruned: %v", err)
	}
}
