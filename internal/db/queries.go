package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

const buyerExists = `-- name: BuyerExists :one
SELECT EXISTS (SELECT 1 FROM buyers WHERE user_id = $1)
`

func (q *Queries) BuyerExists(ctx context.Context, userID string) (bool, error) {
	row := q.db.QueryRowContext(ctx, buyerExists, userID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createBuyer = `-- name: CreateBuyer :exec
INSERT INTO buyers (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING
`

func (q *Queries) CreateBuyer(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx, createBuyer, userID)
	return err
}

const createPurchase = `-- name: CreatePurchase :one
INSERT INTO purchases (user_id, product, category, price)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, product, category, price, created_at
`

type CreatePurchaseParams struct {
	UserID   string `json:"user_id"`
	Product  string `json:"product"`
	Category string `json:"category"`
	Price    int32  `json:"price"`
}

func (q *Queries) CreatePurchase(ctx context.Context, arg CreatePurchaseParams) (Purchase, error) {
	row := q.db.QueryRowContext(ctx, createPurchase,
		arg.UserID,
		arg.Product,
		arg.Category,
		arg.Price,
	)
	var i Purchase
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Product,
		&i.Category,
		&i.Price,
		&i.CreatedAt,
	)
	return i, err
}

const createRecommendation = `-- name: CreateRecommendation :one
INSERT INTO recommendations (id, user_id, category, result)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, category, result, created_at
`

type CreateRecommendationParams struct {
	ID       uuid.UUID             `json:"id"`
	UserID   string                `json:"user_id"`
	Category string                `json:"category"`
	Result   pqtype.NullRawMessage `json:"result"`
}

func (q *Queries) CreateRecommendation(ctx context.Context, arg CreateRecommendationParams) (Recommendation, error) {
	row := q.db.QueryRowContext(ctx, createRecommendation,
		arg.ID,
		arg.UserID,
		arg.Category,
		arg.Result,
	)
	var i Recommendation
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Category,
		&i.Result,
		&i.CreatedAt,
	)
	return i, err
}

const deleteRecommendationsBefore = `-- name: DeleteRecommendationsBefore :execrows
DELETE FROM recommendations
WHERE created_at < $1
`

func (q *Queries) DeleteRecommendationsBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRecommendationsBefore, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getRecommendation = `-- name: GetRecommendation :one
SELECT id, user_id, category, result, created_at FROM recommendations
WHERE id = $1
`

func (q *Queries) GetRecommendation(ctx context.Context, id uuid.UUID) (Recommendation, error) {
	row := q.db.QueryRowContext(ctx, getRecommendation, id)
	var i Recommendation
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Category,
		&i.Result,
		&i.CreatedAt,
	)
	return i, err
}

const listCategories = `-- name: ListCategories :one
SELECT COALESCE(array_agg(name ORDER BY position, name), '{}') FROM categories
`

func (q *Queries) ListCategories(ctx context.Context) ([]string, error) {
	row := q.db.QueryRowContext(ctx, listCategories)
	var names []string
	err := row.Scan(pq.Array(&names))
	return names, err
}

const listProductCategories = `-- name: ListProductCategories :one
SELECT COALESCE(array_agg(category ORDER BY first_id), '{}')
FROM (SELECT category, MIN(id) AS first_id FROM products GROUP BY category) c
`

func (q *Queries) ListProductCategories(ctx context.Context) ([]string, error) {
	row := q.db.QueryRowContext(ctx, listProductCategories)
	var names []string
	err := row.Scan(pq.Array(&names))
	return names, err
}

const listProductsByCategory = `-- name: ListProductsByCategory :many
SELECT id, product, category, price FROM products
WHERE category = $1
ORDER BY id
`

func (q *Queries) ListProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listProductsByCategory, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Product,
			&i.Category,
			&i.Price,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPurchasesByUser = `-- name: ListPurchasesByUser :many
SELECT id, user_id, product, category, price, created_at FROM purchases
WHERE user_id = $1
ORDER BY id
`

func (q *Queries) ListPurchasesByUser(ctx context.Context, userID string) ([]Purchase, error) {
	rows, err := q.db.QueryContext(ctx, listPurchasesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Purchase
	for rows.Next() {
		var i Purchase
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Product,
			&i.Category,
			&i.Price,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
