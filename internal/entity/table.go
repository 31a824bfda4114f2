package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Table identifies a physical table in the dining room. The catalog is
// reference data; the session lifecycle never mutates it.
type Table struct {
	bun.BaseModel `bun:"table:tables"`

	ID        int64     `bun:",pk,autoincrement"`
	Number    int       `bun:"number"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
