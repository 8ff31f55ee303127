package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"deeptrust-api/internal/domain"
	"deeptrust-api/pkg/utils"
)

// Ledger is the append-only history of analysis results.
type Ledger struct {
	repo domain.AnalysisRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewLedger(repo domain.AnalysisRepository, l *zap.Logger) *Ledger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Ledger{repo: repo, log: l, now: now}
}

func (l *Ledger) Append(ctx context.Context, userID, typ, fileName string, result domain.Result) (domain.Analysis, error) {
	if userID == "" {
		return domain.Analysis{}, domain.ErrUnauthorized
	}
	if typ == "" {
		return domain.Analysis{}, fmt.Errorf("%w: missing type", domain.ErrValidation)
	}
	if utf8.RuneCountInString(typ) > domain.MaxTypeLen {
		return domain.Analysis{}, fmt.Errorf("%w: type longer than %d characters", domain.ErrValidation, domain.MaxTypeLen)
	}
	if utf8.RuneCountInString(fileName) > domain.MaxFileNameLen {
		return domain.Analysis{}, fmt.Errorf("%w: fileName longer than %d characters", domain.ErrValidation, domain.MaxFileNameLen)
	}
	a := domain.Analysis{
		ID:        utils.NewID(),
		UserID:    userID,
		Type:      typ,
		FileName:  fileName,
		Result:    result,
		Timestamp: l.now(),
	}
	if err := l.repo.AppendAnalysis(ctx, &a); err != nil {
		return domain.Analysis{}, err
	}
	analysesRecordedTotal.WithLabelValues(typeLabel(typ)).Inc()
	tokensRecordedTotal.Add(float64(domain.Weight(typ)))
	l.log.Debug("analysis recorded",
		zap.String("analysis_id", a.ID), zap.String("user_id", userID), zap.String("type", typ))
	return a, nil
}

func (l *Ledger) ListForUser(ctx context.Context, userID string) ([]domain.Analysis, error) {
	return l.repo.ListAnalysesByUser(ctx, userID)
}

func (l *Ledger) ListAll(ctx context.Context) ([]domain.Analysis, error) {
	return l.repo.ListAnalyses(ctx)
}
