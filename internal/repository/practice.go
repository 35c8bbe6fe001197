package repository

import (
	"context"

	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/models"

	"gorm.io/gorm"
)

// CreatePracticeLog inserts the log and bumps the user's counter in
// one transaction.
func CreatePracticeLog(ctx context.Context, log *models.PracticeLog) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(log).Error; err != nil {
			return err
		}
		return tx.Model(&models.UserStats{}).
			Where("user_id = ?", log.UserID).
			UpdateColumn("total_practice_logs", gorm.Expr("total_practice_logs + 1")).Error
	})
}

func GetPracticeLog(ctx context.Context, id string) (*models.PracticeLog, error) {
	var log models.PracticeLog
	err := database.DB.WithContext(ctx).First(&log, "id = ?", id).Error
	return &log, err
}

func ListPracticeLogs(ctx context.Context, userID string) ([]models.PracticeLog, error) {
	var logs []models.PracticeLog
	err := database.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Find(&logs).Error
	return logs, err
}

func UpdatePracticeLog(ctx context.Context, log *models.PracticeLog) error {
	return database.DB.WithContext(ctx).Save(log).Error
}

func DeletePracticeLog(ctx context.Context, id string) error {
	return database.DB.WithContext(ctx).Delete(&models.PracticeLog{}, "id = ?", id).Error
}
