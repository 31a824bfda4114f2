package dto

// TableResponse represents a physical table as exposed via transport layers.
type TableResponse struct {
	ID     int64 `json:"id"`
	Number int   `json:"number"`
}
