package domain

// RecentActivityLimit is how many ledger entries the dashboard shows.
const RecentActivityLimit = 5

// Stats is the dashboard summary. The admin-only counters are nil for regular
// users so they are left out of the JSON entirely.
type Stats struct {
	TotalAnalyses  int        `json:"totalAnalyses"`
	DeepfakeCount  int        `json:"deepfakeCount"`
	FinanceCount   int        `json:"financeCount"`
	HighRiskCount  int        `json:"highRiskCount"`
	RecentActivity []Analysis `json:"recentActivity"`

	TotalUsers  *int `json:"totalUsers,omitempty"`
	ActiveUsers *int `json:"activeUsers,omitempty"`
	TotalTokens *int `json:"totalTokens,omitempty"`
}

// Tokens sums Weight over analyses.
func Tokens(analyses []Analysis) int {
	total := 0
	for _, a := range analyses {
		total += Weight(a.Type)
	}
	return total
}
