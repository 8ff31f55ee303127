package service

import (
	"context"

	"deeptrust-api/internal/core/auth"
	"deeptrust-api/internal/domain"
)

// StatsService recomputes dashboard statistics on every call.
type StatsService struct {
	analyses domain.AnalysisRepository
	snap     Snapshotter
}

func NewStatsService(analyses domain.AnalysisRepository, snap Snapshotter) *StatsService {
	return &StatsService{analyses: analyses, snap: snap}
}

// ComputeStats scopes to the whole ledger for admins and to the caller's own
// analyses otherwise.
func (s *StatsService) ComputeStats(ctx context.Context, id auth.Identity) (domain.Stats, error) {
	if !id.IsAdmin() {
		mine, err := s.analyses.ListAnalysesByUser(ctx, id.ID)
		if err != nil {
			return domain.Stats{}, err
		}
		return summarize(mine), nil
	}

	users, all, err := s.snap.Snapshot(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	st := summarize(all)
	totalUsers, activeUsers, totalTokens := len(users), 0, domain.Tokens(all)
	for _, u := range users {
		if u.Status == domain.StatusActive {
			activeUsers++
		}
	}
	st.TotalUsers, st.ActiveUsers, st.TotalTokens = &totalUsers, &activeUsers, &totalTokens
	return st, nil
}

func summarize(relevant []domain.Analysis) domain.Stats {
	st := domain.Stats{TotalAnalyses: len(relevant)}
	for _, a := range relevant {
		if domain.IsDeepfakeType(a.Type) {
			st.DeepfakeCount++
		}
		if a.Type == domain.TypeFinance {
			st.FinanceCount++
		}
		if a.Result.IsHighRisk() {
			st.HighRiskCount++
		}
	}
	n := min(len(relevant), domain.RecentActivityLimit)
	st.RecentActivity = append(make([]domain.Analysis, 0, n), relevant[:n]...)
	return st
}
