package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"deeptrust-api/internal/domain"
	"deeptrust-api/pkg/utils"
)

const seedAdminUsername = "admin"

// Snapshotter returns users and analyses as one consistent read.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]domain.User, []domain.Analysis, error)
}

type UserService struct {
	users domain.UserRepository
	snap  Snapshotter
	log   *zap.Logger
	now   func() time.Time
}

func NewUserService(users domain.UserRepository, snap Snapshotter, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{users: users, snap: snap, log: l, now: now}
}

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// Register creates a self-service account: role user, status active.
func (s *UserService) Register(ctx context.Context, username, password string) (domain.User, error) {
	u, err := s.create(ctx, username, password, domain.RoleUser, "")
	if err != nil {
		return domain.User{}, err
	}
	usersCreatedTotal.WithLabelValues("register").Inc()
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// CreateByAdmin provisions an account with a caller-chosen role (default user).
func (s *UserService) CreateByAdmin(ctx context.Context, username, password, role, email string) (domain.User, error) {
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	u, err := s.create(ctx, username, password, role, email)
	if err != nil {
		return domain.User{}, err
	}
	usersCreatedTotal.WithLabelValues("admin").Inc()
	s.log.Info("user provisioned", zap.String("user_id", u.ID), zap.String("username", u.Username), zap.String("role", u.Role))
	return u, nil
}

func (s *UserService) create(ctx context.Context, username, password, role, email string) (domain.User, error) {
	if username == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: missing credentials", domain.ErrValidation)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	u := domain.User{
		ID:           utils.NewID(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
		Email:        email,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Authenticate returns the stored user when username and password match.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	u, err := s.users.FindUserByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		loginsTotal.WithLabelValues("unknown_user").Inc()
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		loginsTotal.WithLabelValues("bad_password").Inc()
		return domain.User{}, domain.ErrInvalidCredentials
	}
	loginsTotal.WithLabelValues("ok").Inc()
	return *u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if id == domain.SeedAdminID {
		return fmt.Errorf("%w: cannot delete default admin", domain.ErrForbidden)
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	usersDeletedTotal.Inc()
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}

// ListWithUsage projects every user with request count, token usage and last
// activity. Analyses of deleted users are ignored.
func (s *UserService) ListWithUsage(ctx context.Context) ([]domain.UserView, error) {
	users, analyses, err := s.snap.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	byUser := make(map[string][]domain.Analysis, len(users))
	for _, a := range analyses {
		byUser[a.UserID] = append(byUser[a.UserID], a)
	}
	out := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		mine := byUser[u.ID]
		v := View(u)
		v.Requests = len(mine)
		v.Tokens = domain.Tokens(mine)
		if len(mine) > 0 {
			// ledger order is newest first
			v.LastActive = mine[0].Timestamp
		}
		out = append(out, v)
	}
	return out, nil
}

// View strips credentials; usage fields start at zero and lastActive at createdAt.
func View(u domain.User) domain.UserView {
	return domain.UserView{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		Status:     u.Status,
		Email:      u.Email,
		CreatedAt:  u.CreatedAt,
		LastActive: u.CreatedAt,
	}
}

// EnsureSeedAdmin creates the protected administrator (id "1") unless a user
// named "admin" already exists.
func (s *UserService) EnsureSeedAdmin(ctx context.Context, password string) (bool, error) {
	_, err := s.users.FindUserByUsername(ctx, seedAdminUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash seed password: %w", err)
	}
	u := domain.User{
		ID:           domain.SeedAdminID,
		Username:     seedAdminUsername,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.StatusActive,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.log.Warn("seed admin id taken by another user; skipping", zap.String("id", domain.SeedAdminID))
			return false, nil
		}
		return false, err
	}
	s.log.Info("seed admin created", zap.String("username", seedAdminUsername))
	return true, nil
}
