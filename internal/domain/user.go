package domain

import (
	"context"
	"time"
)

// SeedAdminID is the id of the bootstrap administrator; that record cannot be deleted.
const SeedAdminID = "1"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDeleted  = "deleted"
)

func ValidRole(r string) bool { return r == RoleAdmin || r == RoleUser }

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserView is a user without credentials, enriched with ledger usage.
type UserView struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
	Requests   int       `json:"requests"`
	Tokens     int       `json:"tokens"`
	LastActive time.Time `json:"lastActive"`
}

// UserRepository persists users. Create fails with ErrConflict on a taken
// username; Delete fails with ErrNotFound when the id is absent.
type UserRepository interface {
	CreateUser(ctx context.Context, u *User) error
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}
