package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Product is a sellable catalog item. Price is the current list price; orders
// copy it at creation time and never read it again.
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID        int64           `bun:",pk,autoincrement"`
	Name      string          `bun:"name"`
	Price     decimal.Decimal `bun:"price,type:decimal(10,2)"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero"`
}
