package domain

import (
	"context"
	"time"
)

type Analysis struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	FileName  string    `json:"fileName"`
	Result    Result    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalysisRepository is the append-only ledger. Both list methods return
// records most-recent-first.
type AnalysisRepository interface {
	AppendAnalysis(ctx context.Context, a *Analysis) error
	ListAnalysesByUser(ctx context.Context, userID string) ([]Analysis, error)
	ListAnalyses(ctx context.Context) ([]Analysis, error)
}

// Column limits for the free-form analysis fields.
const (
	MaxTypeLen     = 64
	MaxFileNameLen = 255
)

const (
	TypeDeepfake = "deepfake"
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeFinance  = "finance"
)

// IsDeepfakeType reports whether t is bucketed as a deepfake analysis on dashboards.
func IsDeepfakeType(t string) bool {
	switch t {
	case TypeDeepfake, TypeImage, TypeVideo, TypeAudio:
		return true
	}
	return false
}

// Weight is the usage ("token") cost of one analysis of type t.
// Note "deepfake" itself falls in the default bucket.
func Weight(t string) int {
	switch t {
	case TypeAudio, TypeVideo, TypeImage:
		return 50
	case TypeFinance:
		return 30
	default:
		return 10
	}
}
