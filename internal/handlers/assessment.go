package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/RaysoLee/mindreshape/internal/repository"
	"github.com/RaysoLee/mindreshape/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AssessmentHandler struct {
	log  *zap.Logger
	quiz *services.QuizService
}

func NewAssessmentHandler(log *zap.Logger, quiz *services.QuizService) *AssessmentHandler {
	return &AssessmentHandler{log: log, quiz: quiz}
}

// List returns the published catalog with question counts.
func (h *AssessmentHandler) List(c *gin.Context) {
	assessments, err := repository.ListPublishedAssessments(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list assessments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load assessments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": assessments})
}

// Get returns one published assessment with its questions and options,
// plus the caller's recent attempts at it.
func (h *AssessmentHandler) Get(c *gin.Context) {
	user := CurrentUser(c)
	id := c.Param("id")

	assessment, err := repository.GetPublishedAssessment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
			return
		}
		h.log.Error("Failed to load assessment", zap.String("assessmentID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load assessment"})
		return
	}

	questions, err := repository.GetAssessmentQuestions(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to load questions", zap.String("assessmentID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load assessment"})
		return
	}
	assessment.Questions = questions

	sessions, err := repository.GetRecentSessions(c.Request.Context(), user.ID, id, 5)
	if err != nil {
		h.log.Error("Failed to load recent sessions", zap.String("assessmentID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load assessment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessment": assessment, "recent_sessions": sessions})
}

// Start begins or resumes an attempt at the assessment.
func (h *AssessmentHandler) Start(c *gin.Context) {
	user := CurrentUser(c)
	id := c.Param("id")

	result, err := h.quiz.StartOrResume(c.Request.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
			return
		}
		h.log.Error("Failed to start session", zap.String("assessmentID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start assessment"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type saveAnswerRequest struct {
	QuestionID string   `json:"question_id" binding:"required"`
	OptionIDs  []string `json:"option_ids"`
	TextAnswer string   `json:"text_answer"`
}

// SaveAnswer upserts one answer on an in-progress session.
func (h *AssessmentHandler) SaveAnswer(c *gin.Context) {
	user := CurrentUser(c)
	sessionID := c.Param("id")

	var req saveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_id is required"})
		return
	}

	err := h.quiz.RecordAnswer(c.Request.Context(), user.ID, sessionID, req.QuestionID, req.OptionIDs, req.TextAnswer)
	if err != nil {
		h.respondQuizError(c, err, "failed to save answer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// Submit completes the session, scores it and returns the result.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	user := CurrentUser(c)
	sessionID := c.Param("id")

	result, err := h.quiz.Submit(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		h.respondQuizError(c, err, "failed to submit assessment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "percentage": result.Percentage()})
}

// Result returns the stored result for a completed session.
func (h *AssessmentHandler) Result(c *gin.Context) {
	user := CurrentUser(c)
	sessionID := c.Param("id")

	result, err := h.quiz.Result(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}
		h.respondQuizError(c, err, "failed to load result")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "percentage": result.Percentage()})
}

// ResultChart renders the per-dimension scores of a completed session
// as an HTML bar chart page.
func (h *AssessmentHandler) ResultChart(c *gin.Context) {
	user := CurrentUser(c)
	sessionID := c.Param("id")

	result, err := h.quiz.Result(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}
		h.respondQuizError(c, err, "failed to load result")
		return
	}

	dimensions := map[string]int{}
	if len(result.DimensionScores) > 0 {
		if err := json.Unmarshal(result.DimensionScores, &dimensions); err != nil {
			h.log.Error("Failed to decode dimension scores", zap.String("sessionID", sessionID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render chart"})
			return
		}
	}

	chart := generateDimensionChart(dimensions, result.Percentage())
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := chart.Render(c.Writer); err != nil {
		h.log.Error("Failed to render chart", zap.String("sessionID", sessionID), zap.Error(err))
	}
}

func (h *AssessmentHandler) respondQuizError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "session not found or not yours"})
	case errors.Is(err, services.ErrSessionCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "session is already completed"})
	case errors.Is(err, services.ErrQuestionMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "question does not belong to this assessment"})
	case errors.Is(err, services.ErrEmptySelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": "select at least one option"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.log.Error("Quiz operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func generateDimensionChart(dimensions map[string]int, percentage int) *charts.Bar {
	keys := make([]string, 0, len(dimensions))
	for k := range dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]opts.BarData, 0, len(keys))
	for _, k := range keys {
		items = append(items, opts.BarData{Value: dimensions[k]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Dimension scores",
			Subtitle: fmt.Sprintf("Overall: %d%%", percentage),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Score"}),
	)
	bar.SetXAxis(keys)
	bar.AddSeries("score", items)
	return bar
}
