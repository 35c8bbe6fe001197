package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Password    string `json:"-"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserStats is the per-user counter row shown on the dashboard. Points
// are only changed through an atomic in-database increment.
type UserStats struct {
	ID                  string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	TotalAssessments    int       `json:"total_assessments"`
	TotalPracticeLogs   int       `json:"total_practice_logs"`
	TotalTasksCompleted int       `json:"total_tasks_completed"`
	CurrentStreak       int       `json:"current_streak"`
	LongestStreak       int       `json:"longest_streak"`
	TotalPoints         int       `json:"total_points"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (s *UserStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
