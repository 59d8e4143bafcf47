package domain

// TicketStats aggregates ticket counts for the admin overview.
type TicketStats struct {
	Total      int64                    `json:"total"`
	ByStatus   map[TicketStatus]int64   `json:"by_status"`
	ByPriority map[TicketPriority]int64 `json:"by_priority"`
	ByCategory map[string]int64         `json:"by_category"`
}
