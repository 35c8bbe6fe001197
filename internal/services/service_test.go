package services

import (
	"testing"

	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/models"
	"github.com/RaysoLee/mindreshape/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB points the package-level database handle at a fresh
// in-memory SQLite database.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	database.DB = db
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func createTestUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := repository.CreateUser(t.Context(), email, "Passw0rd!", "tester", "Tester")
	require.NoError(t, err)
	return user
}

// createScoredAssessment builds a two-question assessment:
// question 1 options score 3 ("focus") and 1 ("focus"),
// question 2 options score 2 ("calm") and 0 ("calm").
// The maximum achievable score is 5.
func createScoredAssessment(t *testing.T) *models.Assessment {
	t.Helper()
	assessment := &models.Assessment{
		Title:       "Attention Check",
		Category:    "bias",
		IsPublished: true,
		Questions: []models.Question{
			{
				OrderNum:     1,
				Type:         models.QuestionTypeSingle,
				QuestionText: "How often do you pause before judging?",
				Options: []models.QuestionOption{
					{OrderNum: 1, OptionText: "Always", Score: 3, Dimension: "focus"},
					{OrderNum: 2, OptionText: "Rarely", Score: 1, Dimension: "focus"},
				},
			},
			{
				OrderNum:     2,
				Type:         models.QuestionTypeSingle,
				QuestionText: "How calm do you stay under pressure?",
				Options: []models.QuestionOption{
					{OrderNum: 1, OptionText: "Calm", Score: 2, Dimension: "calm"},
					{OrderNum: 2, OptionText: "Not at all", Score: 0, Dimension: "calm"},
				},
			},
		},
	}
	require.NoError(t, repository.CreateAssessment(t.Context(), assessment))
	return assessment
}
