package repository

import (
	"context"
	"time"

	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	return database.DB.WithContext(ctx).Create(conversation).Error
}

func GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := database.DB.WithContext(ctx).First(&conversation, "id = ?", id).Error
	return &conversation, err
}

// ListConversations returns the user's conversations, most recently
// active first.
func ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := database.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// DeleteConversation removes a conversation and its messages.
func DeleteConversation(ctx context.Context, id string) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Message{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, "id = ?", id).Error
	})
}

func UpdateConversationTitle(ctx context.Context, id, title string) error {
	return database.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).Update("title", title).Error
}

// TouchConversation bumps updated_at, the conversation list ordering
// key.
func TouchConversation(ctx context.Context, id string) error {
	return database.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).Update("updated_at", time.Now().UTC()).Error
}

func CreateMessage(ctx context.Context, conversationID, role, content string, metadata datatypes.JSONMap) (*models.Message, error) {
	message := &models.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Metadata:       metadata,
	}
	err := database.DB.WithContext(ctx).Create(message).Error
	return message, err
}

// GetConversationMessages returns every message of a conversation in
// creation order, system rows included. Callers filter for display.
func GetConversationMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := database.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// CountUserMessages counts user-role messages, used to detect the
// first turn of a conversation.
func CountUserMessages(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND role = ?", conversationID, models.RoleUser).
		Count(&count).Error
	return count, err
}
