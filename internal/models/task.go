package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TaskTypeDaily  = "daily"
	TaskTypeWeekly = "weekly"
	TaskTypeCustom = "custom"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusSkipped    = "skipped"
)

// PointsPerTask is added to the user's stats when a task completes.
const PointsPerTask = 10

// Task is a catalog entry: a growth exercise with display-only steps,
// tips and resources stored as JSON documents.
type Task struct {
	ID               string         `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string         `gorm:"not null" json:"title"`
	Description      string         `json:"description"`
	Type             string         `gorm:"index;not null" json:"type"`
	Category         string         `json:"category"`
	Difficulty       int            `json:"difficulty"`
	EstimatedMinutes int            `json:"estimated_minutes"`
	Steps            datatypes.JSON `json:"steps,omitempty"`
	Tips             datatypes.JSON `json:"tips,omitempty"`
	Resources        datatypes.JSON `json:"resources,omitempty"`
	IsActive         bool           `gorm:"index" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// UserTask assigns a catalog task to one user for one calendar day.
type UserTask struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string     `gorm:"type:uuid;uniqueIndex:idx_user_task_date;not null" json:"user_id"`
	TaskID       string     `gorm:"type:uuid;uniqueIndex:idx_user_task_date;not null" json:"task_id"`
	AssignedDate string     `gorm:"uniqueIndex:idx_user_task_date;not null" json:"assigned_date"` // YYYY-MM-DD
	Status       string     `gorm:"default:pending" json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

func (t *UserTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// ValidTaskStatus reports whether s is one of the four task states.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusSkipped:
		return true
	}
	return false
}
