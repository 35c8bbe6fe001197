package repository

import (
	"context"

	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/models"

	"gorm.io/gorm"
)

// AssessmentSummary is a published assessment plus its question count,
// for the catalog listing.
type AssessmentSummary struct {
	models.Assessment
	QuestionCount int `json:"question_count"`
}

func ListPublishedAssessments(ctx context.Context) ([]AssessmentSummary, error) {
	var assessments []models.Assessment
	err := database.DB.WithContext(ctx).
		Where("is_published = ?", true).
		Order("created_at DESC").
		Find(&assessments).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]AssessmentSummary, 0, len(assessments))
	for _, a := range assessments {
		var count int64
		if err := database.DB.WithContext(ctx).Model(&models.Question{}).
			Where("assessment_id = ?", a.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, AssessmentSummary{Assessment: a, QuestionCount: int(count)})
	}
	return summaries, nil
}

func GetPublishedAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	var assessment models.Assessment
	err := database.DB.WithContext(ctx).
		First(&assessment, "id = ? AND is_published = ?", id, true).Error
	return &assessment, err
}

// GetAssessmentQuestions loads the ordered questions with their ordered
// options.
func GetAssessmentQuestions(ctx context.Context, assessmentID string) ([]models.Question, error) {
	var questions []models.Question
	err := database.DB.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("order_num ASC") }).
		Where("assessment_id = ?", assessmentID).
		Order("order_num ASC").
		Find(&questions).Error
	return questions, err
}

// GetQuestion loads one question with its options.
func GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := database.DB.WithContext(ctx).
		Preload("Options").
		First(&question, "id = ?", id).Error
	return &question, err
}

func CountAssessments(ctx context.Context) (int64, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.Assessment{}).Count(&count).Error
	return count, err
}

func CreateAssessment(ctx context.Context, assessment *models.Assessment) error {
	return database.DB.WithContext(ctx).Create(assessment).Error
}
