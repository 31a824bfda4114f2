package dto

import "time"

// SessionResponse represents a table session as exposed via transport layers.
type SessionResponse struct {
	ID       int64      `json:"id"`
	TableID  int64      `json:"table_id"`
	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at"`
}
