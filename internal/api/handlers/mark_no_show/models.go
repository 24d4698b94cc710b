package mark_no_show

// MarkNoShowRequest HTTP request model
type MarkNoShowRequest struct {
	Date string `json:"date"` // "2025-03-11"
}
