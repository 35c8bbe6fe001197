package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/RaysoLee/mindreshape/internal/models"
	"github.com/RaysoLee/mindreshape/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TaskHandler struct {
	log *zap.Logger
}

func NewTaskHandler(log *zap.Logger) *TaskHandler {
	return &TaskHandler{log: log}
}

// ListCatalog returns active catalog tasks (optionally filtered by
// ?type=daily|weekly|custom) together with the caller's assignments
// for today and their stats row.
func (h *TaskHandler) ListCatalog(c *gin.Context) {
	user := CurrentUser(c)

	var types []string
	if t := c.Query("type"); t != "" {
		types = append(types, t)
	}

	tasks, err := repository.ListActiveTasks(c.Request.Context(), types...)
	if err != nil {
		h.log.Error("Failed to list tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}

	today := time.Now().UTC().Format("2006-01-02")
	userTasks, err := repository.ListUserTasksForDate(c.Request.Context(), user.ID, today)
	if err != nil {
		h.log.Error("Failed to list user tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}

	stats, err := repository.GetUserStats(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to load user stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "user_tasks": userTasks, "stats": stats})
}

type assignTaskRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, defaults to today
}

// Assign adds a catalog task to the user's day. The (user, task, day)
// uniqueness turns a second add into a conflict.
func (h *TaskHandler) Assign(c *gin.Context) {
	user := CurrentUser(c)
	taskID := c.Param("id")

	// The body is optional; it only carries an override date.
	var req assignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	date := req.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	task, err := repository.GetActiveTask(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		h.log.Error("Failed to load task", zap.String("taskID", taskID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign task"})
		return
	}

	userTask, err := repository.AssignTask(c.Request.Context(), user.ID, task.ID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "task already assigned for that day"})
			return
		}
		h.log.Error("Failed to assign task", zap.String("taskID", task.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign task"})
		return
	}
	userTask.Task = *task

	c.JSON(http.StatusCreated, gin.H{"user_task": userTask})
}

// ListDay returns the user's assigned tasks for one day
// (?date=YYYY-MM-DD, defaults to today).
func (h *TaskHandler) ListDay(c *gin.Context) {
	user := CurrentUser(c)

	date := c.Query("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	userTasks, err := repository.ListUserTasksForDate(c.Request.Context(), user.ID, date)
	if err != nil {
		h.log.Error("Failed to list user tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_tasks": userTasks, "date": date})
}

type taskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus transitions an assigned task. Completing awards points
// exactly once; re-completing an already completed task is a no-op on
// the counters.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	user := CurrentUser(c)
	id := c.Param("id")

	var req taskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidTaskStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of pending, in_progress, completed, skipped"})
		return
	}

	userTask, err := repository.GetUserTask(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task assignment not found"})
			return
		}
		h.log.Error("Failed to load user task", zap.String("userTaskID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}
	if userTask.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "task assignment not found or not yours"})
		return
	}

	if err := repository.UpdateUserTaskStatus(c.Request.Context(), userTask, req.Status); err != nil {
		h.log.Error("Failed to update task status", zap.String("userTaskID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_task": userTask})
}
