package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// TableSession is one continuous occupancy of a table, from open to close.
// ClosedAt is nil while the session is open. A session transitions to closed
// exactly once and is never deleted or reopened.
type TableSession struct {
	bun.BaseModel `bun:"table:tables_sessions"`

	ID       int64      `bun:",pk,autoincrement"`
	TableID  int64      `bun:"table_id"`
	OpenedAt time.Time  `bun:"opened_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	ClosedAt *time.Time `bun:"closed_at"`
}

// Open reports whether the session still accepts orders.
func (s *TableSession) Open() bool {
	return s != nil && s.ClosedAt == nil
}
