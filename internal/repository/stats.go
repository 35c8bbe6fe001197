package repository

import (
	"context"
	"errors"

	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/models"

	"gorm.io/gorm"
)

// GetUserStats returns the user's stats row, creating a zero row when
// none exists yet (accounts that predate the stats table).
func GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	var stats models.UserStats
	err := database.DB.WithContext(ctx).First(&stats, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.UserStats{UserID: userID}
		err = database.DB.WithContext(ctx).Create(&stats).Error
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AddPoints applies an atomic in-database increment to the user's
// point counter.
func AddPoints(ctx context.Context, userID string, points int) error {
	return database.DB.WithContext(ctx).Model(&models.UserStats{}).
		Where("user_id = ?", userID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", points)).Error
}
