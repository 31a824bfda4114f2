package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Order is one line item placed within a table session. Price is the unit
// price snapshotted from the product at creation; later catalog edits must not
// change it. The orders table is append-only.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID             int64           `bun:",pk,autoincrement"`
	TableSessionID int64           `bun:"table_session_id"`
	ProductID      int64           `bun:"product_id"`
	Quantity       int64           `bun:"quantity"`
	Price          decimal.Decimal `bun:"price,type:decimal(10,2)"`
	CreatedAt      time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time       `bun:"updated_at,nullzero"`
}

// LineTotal is quantity times the snapshotted unit price. Computed on read,
// never stored.
func (o *Order) LineTotal() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}
