package store

import (
	"context"
	"fmt"

	"github.com/nyashahama/shopping-agent-backend/internal/db"
	"github.com/nyashahama/shopping-agent-backend/internal/history"
	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// Get returns the buyer's purchases oldest first. It implements
// history.Store; unknown buyers yield history.ErrUnknownBuyer.
func (s *Postgres) Get(ctx context.Context, userID string) (shopping.BuyerHistory, error) {
	userID = s.resolve(userID)
	if err := checkBuyer(ctx, s.q, userID); err != nil {
		return shopping.BuyerHistory{}, err
	}
	return listHistory(ctx, s.q, userID)
}

// Append records item and returns the updated history. Items that fail
// Validate are rejected before the database is touched. The existence check,
// insert, and re-read run in one transaction.
func (s *Postgres) Append(ctx context.Context, userID string, item shopping.Item) (shopping.BuyerHistory, error) {
	if err := item.Validate(); err != nil {
		return shopping.BuyerHistory{}, fmt.Errorf("store: invalid purchase: %w", err)
	}
	userID = s.resolve(userID)
	var h shopping.BuyerHistory

	err := s.withTx(ctx, func(ctx context.Context, q *db.Queries) error {
		if err := checkBuyer(ctx, q, userID); err != nil {
			return err
		}

		if _, err := q.CreatePurchase(ctx, db.CreatePurchaseParams{
			UserID:   userID,
			Product:  item.Product,
			Category: item.Category,
			Price:    int32(item.Price),
		}); err != nil {
			return fmt.Errorf("store: insert purchase: %w", err)
		}

		var err error
		h, err = listHistory(ctx, q, userID)
		return err
	})
	if err != nil {
		return shopping.BuyerHistory{}, err
	}
	return h, nil
}

// EnsureBuyer registers userID so that Get and Append accept it.
func (s *Postgres) EnsureBuyer(ctx context.Context, userID string) error {
	if err := s.q.CreateBuyer(ctx, userID); err != nil {
		return fmt.Errorf("store: create buyer: %w", err)
	}
	return nil
}

func (s *Postgres) resolve(userID string) string {
	if userID == "" {
		return s.defaultUserID
	}
	return userID
}

func checkBuyer(ctx context.Context, q db.Querier, userID string) error {
	if userID == "" {
		return history.ErrUnknownBuyer
	}
	ok, err := q.BuyerExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("store: check buyer: %w", err)
	}
	if !ok {
		return history.ErrUnknownBuyer
	}
	return nil
}

func listHistory(ctx context.Context, q db.Querier, userID string) (shopping.BuyerHistory, error) {
	rows, err := q.ListPurchasesByUser(ctx, userID)
	if err != nil {
		return shopping.BuyerHistory{}, fmt.Errorf("store: list purchases: %w", err)
	}
	h := shopping.BuyerHistory{UserID: userID, History: make([]shopping.Item, len(rows))}
	for i, r := range rows {
		h.History[i] = shopping.Item{Product: r.Product, Category: r.Category, Price: int(r.Price)}
	}
	return h, nil
}
