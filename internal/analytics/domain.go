// Package analytics computes the dashboard aggregates over the record
// collection. Results are cached under the listing tag, so any record
// mutation refreshes them on the next read.
package analytics

// Summary is the dashboard payload. ResolutionRate is the finalized share of
// non-deleted records, 0..1.
type Summary struct {
	Total          int64            `json:"total"`
	Active         int64            `json:"active"`
	Finalized      int64            `json:"finalized"`
	Deleted        int64            `json:"deleted"`
	ResolutionRate float64          `json:"resolution_rate"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByDepartment   map[string]int64 `json:"by_department"`
	Monthly        []MonthlyCount   `json:"monthly"`
}

// MonthlyCount is one point of the opened/finalized trend.
type MonthlyCount struct {
	Month     string `json:"month"`
	Opened    int64  `json:"opened"`
	Finalized int64  `json:"finalized"`
}
