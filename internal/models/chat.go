package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is one chat thread with the coach. UpdatedAt is the
// list ordering key and gets bumped on every turn.
type Conversation struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Title       string    `json:"title"`
	ContextType string    `gorm:"default:general" json:"context_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Message is one turn half. System-role rows are hidden context and
// never appear in a rendered transcript. Assistant rows carry
// {model, tokens} in Metadata.
type Message struct {
	ID             string            `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID string            `gorm:"type:uuid;index;not null" json:"conversation_id"`
	Role           string            `gorm:"not null" json:"role"`
	Content        string            `json:"content"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"index" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
