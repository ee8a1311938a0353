package entity

// StatsDocument is the persisted view-count bookkeeping document.
// Counters are keyed by catalog category and product name; Clean in the
// stats package prunes entries whose catalog items no longer exist.
type StatsDocument struct {
	TotalViews    int                       `json:"total_views"`
	CategoryViews map[string]int            `json:"category_views"`
	ProductViews  map[string]map[string]int `json:"product_views"`
	LastUpdated   string                    `json:"last_updated"`
	LastReset     string                    `json:"last_reset"`
}
