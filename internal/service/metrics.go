package service

import "github.com/prometheus/client_golang/prometheus"

var (
	usersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "deeptrust_users_created_total", Help: "Users created, by origin"},
		[]string{"origin"},
	)
	usersDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "deeptrust_users_deleted_total", Help: "Users deleted by an admin"},
	)
	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "deeptrust_logins_total", Help: "Authentication attempts, by outcome"},
		[]string{"outcome"},
	)
	analysesRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "deeptrust_analyses_recorded_total", Help: "Analyses appended to the ledger, by type"},
		[]string{"type"},
	)
	tokensRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "deeptrust_tokens_recorded_total", Help: "Usage tokens charged by appended analyses"},
	)
)

func init() {
	prometheus.MustRegister(usersCreatedTotal, usersDeletedTotal, loginsTotal, analysesRecordedTotal, tokensRecordedTotal)
}

// typeLabel keeps label cardinality bounded; type is a free-form tag.
func typeLabel(t string) string {
	switch t {
	case "deepfake", "image", "video", "audio", "finance", "ocr":
		return t
	}
	return "other"
}
