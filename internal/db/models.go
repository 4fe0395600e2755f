package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type Product struct {
	ID       int64  `json:"id"`
	Product  string `json:"product"`
	Category string `json:"category"`
	Price    int32  `json:"price"`
}

type Purchase struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Product   string    `json:"product"`
	Category  string    `json:"category"`
	Price     int32     `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

type Recommendation struct {
	ID        uuid.UUID             `json:"id"`
	UserID    string                `json:"user_id"`
	Category  string                `json:"category"`
	Result    pqtype.NullRawMessage `json:"result"`
	CreatedAt time.Time             `json:"created_at"`
}
