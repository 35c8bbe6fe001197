package repository

import (
	"context"
	"time"

	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/models"

	"gorm.io/gorm"
)

// ListActiveTasks returns active catalog tasks of the given types,
// ordered type then difficulty.
func ListActiveTasks(ctx context.Context, types ...string) ([]models.Task, error) {
	var tasks []models.Task
	q := database.DB.WithContext(ctx).Where("is_active = ?", true)
	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}
	err := q.Order("type ASC").Order("difficulty ASC").Find(&tasks).Error
	return tasks, err
}

func GetActiveTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := database.DB.WithContext(ctx).First(&task, "id = ? AND is_active = ?", id, true).Error
	return &task, err
}

// AssignTask inserts a user_task for the given day with status
// pending. The unique (user, task, day) index rejects double adds.
func AssignTask(ctx context.Context, userID, taskID, assignedDate string) (*models.UserTask, error) {
	userTask := &models.UserTask{
		UserID:       userID,
		TaskID:       taskID,
		AssignedDate: assignedDate,
		Status:       models.TaskStatusPending,
	}
	err := database.DB.WithContext(ctx).Create(userTask).Error
	return userTask, err
}

func GetUserTask(ctx context.Context, id string) (*models.UserTask, error) {
	var userTask models.UserTask
	err := database.DB.WithContext(ctx).Preload("Task").First(&userTask, "id = ?", id).Error
	return &userTask, err
}

// ListUserTasksForDate returns the user's assigned tasks for one day,
// catalog entries preloaded.
func ListUserTasksForDate(ctx context.Context, userID, assignedDate string) ([]models.UserTask, error) {
	var userTasks []models.UserTask
	err := database.DB.WithContext(ctx).
		Preload("Task").
		Where("user_id = ? AND assigned_date = ?", userID, assignedDate).
		Find(&userTasks).Error
	return userTasks, err
}

// UpdateUserTaskStatus applies a status transition. Completing a task
// stamps completed_at, bumps the completion counter and awards points
// with a single atomic increment; moving back to in_progress clears
// the stamp.
func UpdateUserTaskStatus(ctx context.Context, userTask *models.UserTask, newStatus string) error {
	updates := map[string]interface{}{"status": newStatus}
	switch newStatus {
	case models.TaskStatusCompleted:
		updates["completed_at"] = time.Now().UTC()
	case models.TaskStatusInProgress:
		updates["completed_at"] = nil
	}

	awardPoints := newStatus == models.TaskStatusCompleted && userTask.Status != models.TaskStatusCompleted

	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(userTask).Updates(updates).Error; err != nil {
			return err
		}
		if !awardPoints {
			return nil
		}
		return tx.Model(&models.UserStats{}).
			Where("user_id = ?", userTask.UserID).
			UpdateColumns(map[string]interface{}{
				"total_points":          gorm.Expr("total_points + ?", models.PointsPerTask),
				"total_tasks_completed": gorm.Expr("total_tasks_completed + 1"),
			}).Error
	})
}

func CountTasks(ctx context.Context) (int64, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.Task{}).Count(&count).Error
	return count, err
}

func CreateTask(ctx context.Context, task *models.Task) error {
	return database.DB.WithContext(ctx).Create(task).Error
}
