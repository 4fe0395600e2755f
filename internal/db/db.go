// Package db is the query layer over Postgres. It follows the sqlc layout:
// one Queries type bound to either the pool or a transaction, plain row
// structs, and a Querier interface for handlers and tests.
package db

import (
	"context"
	"database/sql"
	_ "embed"
)

// Schema creates every table the service uses. It is idempotent.
//
//go:embed schema.sql
var Schema string

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db: tx,
	}
}

// Migrate applies Schema.
func Migrate(ctx context.Context, conn DBTX) error {
	_, err := conn.ExecContext(ctx, Schema)
	return err
}
