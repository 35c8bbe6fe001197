package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session lifecycle. There is no server-side uniqueness on in-progress
// sessions: two concurrent starts for the same (user, assessment) can
// both insert a row, and resume picks the newest one.
const (
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
)

// AssessmentSession is one user's pass through an assessment.
type AssessmentSession struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string     `gorm:"type:uuid;index;not null" json:"user_id"`
	AssessmentID string     `gorm:"type:uuid;index;not null" json:"assessment_id"`
	Status       string     `gorm:"index;default:in_progress" json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (s *AssessmentSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Answer stores the full selected-option set for one question of one
// session. The (session, question) pair is unique; saving again
// replaces the set rather than duplicating the row.
type Answer struct {
	ID         string                       `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  string                       `gorm:"type:uuid;uniqueIndex:idx_session_question;not null" json:"session_id"`
	QuestionID string                       `gorm:"type:uuid;uniqueIndex:idx_session_question;not null" json:"question_id"`
	OptionIDs  datatypes.JSONSlice[string]  `json:"option_ids"`
	TextAnswer string                       `json:"text_answer,omitempty"`
	CreatedAt  time.Time                    `json:"created_at"`
	UpdatedAt  time.Time                    `json:"updated_at"`
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AssessmentResult is written once, when a session is submitted.
// DimensionScores maps a dimension tag to the summed score of every
// selected option carrying that tag.
type AssessmentResult struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID       string         `gorm:"type:uuid;uniqueIndex;not null" json:"session_id"`
	UserID          string         `gorm:"type:uuid;index;not null" json:"user_id"`
	AssessmentID    string         `gorm:"type:uuid;index;not null" json:"assessment_id"`
	TotalScore      int            `json:"total_score"`
	MaxScore        int            `json:"max_score"`
	DimensionScores datatypes.JSON `json:"dimension_scores"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (r *AssessmentResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Percentage returns the rounded score percentage, 0 when nothing was
// scorable.
func (r *AssessmentResult) Percentage() int {
	if r.MaxScore <= 0 {
		return 0
	}
	return int(float64(r.TotalScore)/float64(r.MaxScore)*100 + 0.5)
}
