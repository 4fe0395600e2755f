// Package store is the Postgres-backed catalog, buyer history, and
// recommendation log. It wraps db.Queries with transaction support and
// converts rows into shopping values.
//
// Dependency rule: store imports db, shopping, and history (for its sentinel
// error) only. It never imports api, agent, or ai.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nyashahama/shopping-agent-backend/internal/db"
)

// Postgres holds a *sql.DB for starting transactions and a *db.Queries for
// executing queries outside of transactions. The operation files
// (catalog.go, purchases.go, recommendations.go) attach methods to this type.
type Postgres struct {
	// pool is the raw connection pool, used only to begin transactions.
	pool *sql.DB

	q *db.Queries

	// defaultUserID is used by Get and Append when the caller passes "".
	defaultUserID string
}

// New creates a Postgres store from a live connection pool. The pool must
// already be open and verified (e.g. via PingContext) before calling New.
func New(pool *sql.DB, defaultUserID string) *Postgres {
	return &Postgres{pool: pool, q: db.New(pool), defaultUserID: defaultUserID}
}

// txQuerier receives a transactional Queries. Returning a non-nil error
// causes withTx to roll back.
type txQuerier func(ctx context.Context, q *db.Queries) error

// withTx begins a transaction, passes a Queries scoped to that transaction to
// fn, and commits on success or rolls back on any error (including panics).
func (s *Postgres) withTx(ctx context.Context, fn txQuerier) error {
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	// Roll back on panic so the connection is never left in a broken state.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, s.q.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store: fn error: %w; rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}
