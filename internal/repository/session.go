package repository

import (
	"context"
	"errors"
	"time"

	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOrCreateSession resumes the newest in-progress session for
// (user, assessment) or starts a new one. The lookup and the insert are
// separate statements and uniqueness is not enforced: two concurrent
// starts can legitimately both insert. The resumed flag tells the
// caller which path was taken.
func GetOrCreateSession(ctx context.Context, userID, assessmentID string) (session *models.AssessmentSession, resumed bool, err error) {
	var existing models.AssessmentSession
	err = database.DB.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ? AND status = ?",
			userID, assessmentID, models.SessionStatusInProgress).
		Order("created_at DESC").
		First(&existing).Error
	if err == nil {
		return &existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := &models.AssessmentSession{
		UserID:       userID,
		AssessmentID: assessmentID,
		Status:       models.SessionStatusInProgress,
	}
	if err := database.DB.WithContext(ctx).Create(created).Error; err != nil {
		return nil, false, err
	}
	return created, false, nil
}

func GetSession(ctx context.Context, id string) (*models.AssessmentSession, error) {
	var session models.AssessmentSession
	err := database.DB.WithContext(ctx).First(&session, "id = ?", id).Error
	return &session, err
}

// GetRecentSessions returns the caller's latest sessions for one
// assessment, newest first.
func GetRecentSessions(ctx context.Context, userID, assessmentID string, limit int) ([]models.AssessmentSession, error) {
	var sessions []models.AssessmentSession
	err := database.DB.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// SaveAnswer upserts the answer for (session, question): the previous
// option set is replaced wholesale, never merged.
func SaveAnswer(ctx context.Context, answer *models.Answer) error {
	return database.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"option_ids", "text_answer", "updated_at"}),
	}).Create(answer).Error
}

func GetSessionAnswers(ctx context.Context, sessionID string) ([]models.Answer, error) {
	var answers []models.Answer
	err := database.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&answers).Error
	return answers, err
}

// CompleteSession marks the session completed and writes the result
// row and stats bump in the same transaction, so a failed submit never
// leaves a half-written result behind.
func CompleteSession(ctx context.Context, session *models.AssessmentSession, result *models.AssessmentResult) error {
	now := time.Now().UTC()
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(session).Updates(map[string]interface{}{
			"status":       models.SessionStatusCompleted,
			"completed_at": now,
		}).Error
		if err != nil {
			return err
		}
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		return tx.Model(&models.UserStats{}).
			Where("user_id = ?", session.UserID).
			UpdateColumn("total_assessments", gorm.Expr("total_assessments + 1")).Error
	})
}

func GetResultBySession(ctx context.Context, sessionID string) (*models.AssessmentResult, error) {
	var result models.AssessmentResult
	err := database.DB.WithContext(ctx).First(&result, "session_id = ?", sessionID).Error
	return &result, err
}

// RecentResult carries a result joined with its assessment title, for
// the chat personalization summary.
type RecentResult struct {
	models.AssessmentResult
	AssessmentTitle string `json:"assessment_title"`
}

func GetRecentResults(ctx context.Context, userID string, limit int) ([]RecentResult, error) {
	var results []RecentResult
	err := database.DB.WithContext(ctx).
		Model(&models.AssessmentResult{}).
		Select("assessment_results.*, assessments.title AS assessment_title").
		Joins("JOIN assessments ON assessments.id = assessment_results.assessment_id").
		Where("assessment_results.user_id = ?", userID).
		Order("assessment_results.created_at DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}
