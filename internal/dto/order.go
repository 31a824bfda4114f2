package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemResponse is one ledger line with its product name and computed
// line total.
type OrderItemResponse struct {
	ID             int64           `json:"id"`
	TableSessionID int64           `json:"table_session_id"`
	ProductID      int64           `json:"product_id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int64           `json:"quantity"`
	Total          decimal.Decimal `json:"total"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderSummaryResponse aggregates a session's ledger.
type OrderSummaryResponse struct {
	Total    decimal.Decimal `json:"total"`
	Quantity int64           `json:"quantity"`
}
