package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PracticeLog is a user-owned reflection record: the situation, the
// original thought, which bias patterns the user spotted in it, and an
// optional reframed thought.
type PracticeLog struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string         `gorm:"type:uuid;index;not null" json:"user_id"`
	Title           string         `json:"title"`
	Situation       string         `gorm:"not null" json:"situation"`
	OriginalThought string         `gorm:"not null" json:"original_thought"`
	BiasTypes       pq.StringArray `gorm:"type:text[]" json:"bias_types"`
	ReframedThought string         `json:"reframed_thought,omitempty"`
	MoodScore       int            `json:"mood_score"` // 1-10
	Category        string         `json:"category,omitempty"`
	Tags            pq.StringArray `gorm:"type:text[]" json:"tags"`
	Notes           string         `json:"notes,omitempty"`
	OccurredAt      time.Time      `gorm:"index" json:"occurred_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (p *PracticeLog) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
