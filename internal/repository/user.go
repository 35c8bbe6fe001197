package repository

import (
	"context"

	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateUser hashes the password, inserts the user and its empty stats
// row in one transaction.
func CreateUser(ctx context.Context, email, password, username, displayName string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:       email,
		Password:    string(hashedPassword),
		Username:    username,
		DisplayName: displayName,
	}
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserStats{UserID: user.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, "email = ?", email)
	return &user, result.Error
}

func GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, "id = ?", id)
	return &user, result.Error
}

func UpdateUser(ctx context.Context, userID, username, displayName string) error {
	return database.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"username": username, "display_name": displayName}).Error
}

func UpdateUserPassword(ctx context.Context, userID, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return database.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("password", string(hashedPassword)).Error
}

func DeleteUser(ctx context.Context, userID string) error {
	return database.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", userID).Error
}
