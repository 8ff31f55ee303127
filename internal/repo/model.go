package repo

import (
	"time"

	"deeptrust-api/internal/domain"
)

type UserModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"uniqueIndex;size:191;not null"`
	PasswordHash string    `gorm:"size:100;not null"`
	Role         string    `gorm:"size:16;not null;default:user"`
	Status       string    `gorm:"size:16;not null;default:active"`
	Email        string    `gorm:"size:255"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

// AnalysisModel rows are never updated. Seq gives the insertion order.
type AnalysisModel struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"uniqueIndex;size:36;not null"`
	UserID    string    `gorm:"index;size:36;not null"`
	Type      string    `gorm:"size:64;index"`
	FileName  string    `gorm:"size:255"`
	Result    string    `gorm:"type:text"`
	Timestamp time.Time `gorm:"not null"`
}

func (AnalysisModel) TableName() string { return "analyses" }

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		Status:       m.Status,
		Email:        m.Email,
		CreatedAt:    m.CreatedAt,
	}
}

func userToModel(u *domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Status:       u.Status,
		Email:        u.Email,
		CreatedAt:    u.CreatedAt,
	}
}

func analysisFromModel(m AnalysisModel) domain.Analysis {
	a := domain.Analysis{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      m.Type,
		FileName:  m.FileName,
		Timestamp: m.Timestamp,
	}
	if m.Result != "" {
		a.Result = domain.Result(m.Result)
	}
	return a
}

func analysisToModel(a *domain.Analysis) AnalysisModel {
	m := AnalysisModel{
		ID:        a.ID,
		UserID:    a.UserID,
		Type:      a.Type,
		FileName:  a.FileName,
		Timestamp: a.Timestamp,
	}
	if !a.Result.IsNull() {
		m.Result = string(a.Result)
	}
	return m
}
