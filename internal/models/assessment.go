package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Question types. Text questions carry no options and do not score.
const (
	QuestionTypeSingle   = "single"
	QuestionTypeMultiple = "multiple"
	QuestionTypeText     = "text"
)

// Assessment is a published psychometric quiz. Immutable from the
// application's perspective once is_published is set.
type Assessment struct {
	ID               string         `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string         `gorm:"not null" json:"title"`
	Description      string         `json:"description"`
	Category         string         `gorm:"index" json:"category"`
	Difficulty       int            `json:"difficulty"` // ordinal 1-5
	EstimatedMinutes int            `json:"estimated_minutes"`
	Tags             pq.StringArray `gorm:"type:text[]" json:"tags"`
	IsPublished      bool           `gorm:"index" json:"is_published"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Questions []Question `gorm:"foreignKey:AssessmentID" json:"questions,omitempty"`
}

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type Question struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	AssessmentID string    `gorm:"type:uuid;index;not null" json:"assessment_id"`
	OrderNum     int       `json:"order_num"`
	Type         string    `gorm:"not null" json:"type"`
	QuestionText string    `gorm:"not null" json:"question_text"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	Options []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// QuestionOption carries the display text, its score contribution and
// an optional dimension tag used for multi-axis scoring.
type QuestionOption struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID string    `gorm:"type:uuid;index;not null" json:"question_id"`
	OrderNum   int       `json:"order_num"`
	OptionText string    `gorm:"not null" json:"option_text"`
	Score      int       `json:"score"`
	Dimension  string    `json:"dimension,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (o *QuestionOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
