package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"deeptrust-api/internal/domain"
)

// Store holds the users and analyses collections. All writes run under one
// exclusive lock so read-check-write sequences cannot interleave; reads share
// the lock and only ever see committed rows.
type Store struct {
	db *gorm.DB
	mu sync.RWMutex
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithContext(ctx).AutoMigrate(&UserModel{}, &AnalysisModel{})
}

// ---------- users ----------

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	if err := s.db.WithContext(ctx).Model(&UserModel{}).
		Where("username = ? OR id = ?", u.Username, u.ID).Count(&n).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return domain.ErrConflict
	}
	m := userToModel(u)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Store) findUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var m UserModel
	err := s.db.WithContext(ctx).Where(query, arg).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u := userFromModel(m)
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listUsers(ctx)
}

func (s *Store) listUsers(ctx context.Context) ([]domain.User, error) {
	var ms []UserModel
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, userFromModel(m))
	}
	return out, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---------- analyses ----------

func (s *Store) AppendAnalysis(ctx context.Context, a *domain.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := analysisToModel(a)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("append analysis: %w", err)
	}
	return nil
}

func (s *Store) ListAnalysesByUser(ctx context.Context, userID string) ([]domain.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAnalyses(ctx, s.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (s *Store) ListAnalyses(ctx context.Context) ([]domain.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAnalyses(ctx, s.db.WithContext(ctx))
}

func (s *Store) listAnalyses(_ context.Context, q *gorm.DB) ([]domain.Analysis, error) {
	var ms []AnalysisModel
	if err := q.Order("seq DESC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	out := make([]domain.Analysis, 0, len(ms))
	for _, m := range ms {
		out = append(out, analysisFromModel(m))
	}
	return out, nil
}

// Snapshot reads both collections under a single read lock, so the pair is
// consistent with respect to concurrent writers.
func (s *Store) Snapshot(ctx context.Context) ([]domain.User, []domain.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.listUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	analyses, err := s.listAnalyses(ctx, s.db.WithContext(ctx))
	if err != nil {
		return nil, nil, err
	}
	return users, analyses, nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
