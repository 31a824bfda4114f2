package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse represents a catalog item as exposed via transport layers.
type ProductResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
