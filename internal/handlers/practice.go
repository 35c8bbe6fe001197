package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/RaysoLee/mindreshape/internal/models"
	"github.com/RaysoLee/mindreshape/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PracticeHandler struct {
	log *zap.Logger
}

func NewPracticeHandler(log *zap.Logger) *PracticeHandler {
	return &PracticeHandler{log: log}
}

type practiceLogRequest struct {
	Title           string    `json:"title"`
	Situation       string    `json:"situation" binding:"required"`
	OriginalThought string    `json:"original_thought" binding:"required"`
	BiasTypes       []string  `json:"bias_types"`
	ReframedThought string    `json:"reframed_thought"`
	MoodScore       int       `json:"mood_score"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	Notes           string    `json:"notes"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (h *PracticeHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	var req practiceLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "situation and original_thought are required"})
		return
	}
	if req.MoodScore < 0 || req.MoodScore > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mood_score must be between 1 and 10"})
		return
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	log := &models.PracticeLog{
		UserID:          user.ID,
		Title:           req.Title,
		Situation:       req.Situation,
		OriginalThought: req.OriginalThought,
		BiasTypes:       req.BiasTypes,
		ReframedThought: req.ReframedThought,
		MoodScore:       req.MoodScore,
		Category:        req.Category,
		Tags:            req.Tags,
		Notes:           req.Notes,
		OccurredAt:      occurredAt,
	}
	if err := repository.CreatePracticeLog(c.Request.Context(), log); err != nil {
		h.log.Error("Failed to create practice log", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save practice log"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"log": log})
}

// List returns the user's logs, newest occurrence first.
func (h *PracticeHandler) List(c *gin.Context) {
	user := CurrentUser(c)

	logs, err := repository.ListPracticeLogs(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to list practice logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load practice logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *PracticeHandler) Get(c *gin.Context) {
	user := CurrentUser(c)

	log, err := h.ownedLog(c, user.ID, c.Param("id"))
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": log})
}

func (h *PracticeHandler) Update(c *gin.Context) {
	user := CurrentUser(c)

	log, err := h.ownedLog(c, user.ID, c.Param("id"))
	if err != nil {
		return
	}

	var req practiceLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "situation and original_thought are required"})
		return
	}
	if req.MoodScore < 0 || req.MoodScore > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mood_score must be between 1 and 10"})
		return
	}

	log.Title = req.Title
	log.Situation = req.Situation
	log.OriginalThought = req.OriginalThought
	log.BiasTypes = req.BiasTypes
	log.ReframedThought = req.ReframedThought
	log.MoodScore = req.MoodScore
	log.Category = req.Category
	log.Tags = req.Tags
	log.Notes = req.Notes
	if !req.OccurredAt.IsZero() {
		log.OccurredAt = req.OccurredAt
	}

	if err := repository.UpdatePracticeLog(c.Request.Context(), log); err != nil {
		h.log.Error("Failed to update practice log", zap.String("logID", log.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update practice log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": log})
}

func (h *PracticeHandler) Delete(c *gin.Context) {
	user := CurrentUser(c)

	log, err := h.ownedLog(c, user.ID, c.Param("id"))
	if err != nil {
		return
	}

	if err := repository.DeletePracticeLog(c.Request.Context(), log.ID); err != nil {
		h.log.Error("Failed to delete practice log", zap.String("logID", log.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete practice log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *PracticeHandler) ownedLog(c *gin.Context, userID, id string) (*models.PracticeLog, error) {
	log, err := repository.GetPracticeLog(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "practice log not found"})
			return nil, err
		}
		h.log.Error("Failed to load practice log", zap.String("logID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load practice log"})
		return nil, err
	}
	if log.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "practice log not found or not yours"})
		return nil, gorm.ErrRecordNotFound
	}
	return log, nil
}
