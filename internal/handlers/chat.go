package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/RaysoLee/mindreshape/internal/llm"
	"github.com/RaysoLee/mindreshape/internal/models"
	"github.com/RaysoLee/mindreshape/internal/repository"
	"github.com/RaysoLee/mindreshape/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ChatHandler struct {
	log  *zap.Logger
	chat *services.ChatService
}

func NewChatHandler(log *zap.Logger, chat *services.ChatService) *ChatHandler {
	return &ChatHandler{log: log, chat: chat}
}

// ListConversations returns the user's threads, most recently active
// first.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	user := CurrentUser(c)

	conversations, err := repository.ListConversations(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to list conversations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

type createConversationRequest struct {
	Topic string `json:"topic"`
}

func (h *ChatHandler) CreateConversation(c *gin.Context) {
	user := CurrentUser(c)

	// An empty body means no topic; anything else malformed is rejected.
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	conversation, err := h.chat.NewConversation(c.Request.Context(), user.ID, strings.TrimSpace(req.Topic))
	if err != nil {
		h.log.Error("Failed to create conversation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create conversation"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conversation})
}

// GetConversation returns the thread plus its visible transcript.
// System-role messages stay hidden.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	user := CurrentUser(c)
	id := c.Param("id")

	conversation, err := h.ownedConversation(c, user.ID, id)
	if err != nil {
		return
	}

	messages, err := repository.GetConversationMessages(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to load messages", zap.String("conversationID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	visible := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == models.RoleSystem {
			continue
		}
		visible = append(visible, m)
	}

	c.JSON(http.StatusOK, gin.H{"conversation": conversation, "messages": visible})
}

func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	user := CurrentUser(c)
	id := c.Param("id")

	if _, err := h.ownedConversation(c, user.ID, id); err != nil {
		return
	}

	if err := repository.DeleteConversation(c.Request.Context(), id); err != nil {
		h.log.Error("Failed to delete conversation", zap.String("conversationID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// Chat runs one turn against the coach. Provider failures map onto the
// transport: rate limits pass through as 429, credential problems as
// 401, anything else as 502.
func (h *ChatHandler) Chat(c *gin.Context) {
	user := CurrentUser(c)

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	if req.ConversationID == "" || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation_id and message are required"})
		return
	}

	result, err := h.chat.Turn(c.Request.Context(), user.ID, req.ConversationID, req.Message)
	if err != nil {
		h.respondTurnError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ChatHandler) respondTurnError(c *gin.Context, err error) {
	var rateErr *llm.ErrRateLimit
	var authErr *llm.ErrAuthentication

	switch {
	case errors.Is(err, services.ErrNotConversationOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "conversation not found or not yours"})
	case errors.As(err, &rateErr):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "the assistant is receiving too many requests, try again shortly"})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "assistant credentials rejected"})
	default:
		h.log.Error("Chat turn failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "the assistant is unavailable right now"})
	}
}

func (h *ChatHandler) ownedConversation(c *gin.Context, userID, id string) (*models.Conversation, error) {
	conversation, err := repository.GetConversation(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return nil, err
		}
		h.log.Error("Failed to load conversation", zap.String("conversationID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return nil, err
	}
	if conversation.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "conversation not found or not yours"})
		return nil, services.ErrNotConversationOwner
	}
	return conversation, nil
}
