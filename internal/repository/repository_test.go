package repository

import (
	"testing"
	"time"

	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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

func TestCreateUserAlsoCreatesStats(t *testing.T) {
	setupTestDB(t)

	user, err := CreateUser(t.Context(), "new@example.com", "Passw0rd!", "new", "")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.True(t, user.CheckPassword("Passw0rd!"))
	assert.False(t, user.CheckPassword("wrong"))

	stats, err := GetUserStats(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPoints)
}

func TestTaskCompletionAwardsPointsOnce(t *testing.T) {
	setupTestDB(t)
	user, err := CreateUser(t.Context(), "task@example.com", "Passw0rd!", "t", "")
	require.NoError(t, err)

	task := &models.Task{Title: "Reflect", Type: models.TaskTypeDaily, IsActive: true}
	require.NoError(t, CreateTask(t.Context(), task))

	today := time.Now().UTC().Format("2006-01-02")
	userTask, err := AssignTask(t.Context(), user.ID, task.ID, today)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, userTask.Status)

	require.NoError(t, UpdateUserTaskStatus(t.Context(), userTask, models.TaskStatusCompleted))
	assert.NotNil(t, userTask.CompletedAt)

	stats, err := GetUserStats(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PointsPerTask, stats.TotalPoints)
	assert.Equal(t, 1, stats.TotalTasksCompleted)

	// Completing an already completed task moves no counters.
	reloaded, err := GetUserTask(t.Context(), userTask.ID)
	require.NoError(t, err)
	require.NoError(t, UpdateUserTaskStatus(t.Context(), reloaded, models.TaskStatusCompleted))

	stats, err = GetUserStats(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PointsPerTask, stats.TotalPoints)
	assert.Equal(t, 1, stats.TotalTasksCompleted)
}

func TestTaskBackToInProgressClearsCompletedAt(t *testing.T) {
	setupTestDB(t)
	user, err := CreateUser(t.Context(), "task@example.com", "Passw0rd!", "t", "")
	require.NoError(t, err)

	task := &models.Task{Title: "Reflect", Type: models.TaskTypeDaily, IsActive: true}
	require.NoError(t, CreateTask(t.Context(), task))

	userTask, err := AssignTask(t.Context(), user.ID, task.ID, "2026-08-30")
	require.NoError(t, err)
	require.NoError(t, UpdateUserTaskStatus(t.Context(), userTask, models.TaskStatusCompleted))

	reloaded, err := GetUserTask(t.Context(), userTask.ID)
	require.NoError(t, err)
	require.NoError(t, UpdateUserTaskStatus(t.Context(), reloaded, models.TaskStatusInProgress))

	reloaded, err = GetUserTask(t.Context(), userTask.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CompletedAt)
	assert.Equal(t, models.TaskStatusInProgress, reloaded.Status)
}

func TestAssignTaskRejectsDuplicateDay(t *testing.T) {
	setupTestDB(t)
	user, err := CreateUser(t.Context(), "task@example.com", "Passw0rd!", "t", "")
	require.NoError(t, err)

	task := &models.Task{Title: "Reflect", Type: models.TaskTypeDaily, IsActive: true}
	require.NoError(t, CreateTask(t.Context(), task))

	_, err = AssignTask(t.Context(), user.ID, task.ID, "2026-08-30")
	require.NoError(t, err)
	_, err = AssignTask(t.Context(), user.ID, task.ID, "2026-08-30")
	assert.Error(t, err)

	// A different day is fine.
	_, err = AssignTask(t.Context(), user.ID, task.ID, "2026-08-31")
	assert.NoError(t, err)
}

func TestCreatePracticeLogBumpsCounter(t *testing.T) {
	setupTestDB(t)
	user, err := CreateUser(t.Context(), "practice@example.com", "Passw0rd!", "p", "")
	require.NoError(t, err)

	log := &models.PracticeLog{
		UserID:          user.ID,
		Situation:       "A colleague ignored my message.",
		OriginalThought: "They must be angry with me.",
		BiasTypes:       []string{"mind-reading"},
		MoodScore:       4,
		OccurredAt:      time.Now().UTC(),
	}
	require.NoError(t, CreatePracticeLog(t.Context(), log))

	stats, err := GetUserStats(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPracticeLogs)

	logs, err := ListPracticeLogs(t.Context(), user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "They must be angry with me.", logs[0].OriginalThought)
}

func TestGetRecentResultsJoinsTitles(t *testing.T) {
	setupTestDB(t)
	user, err := CreateUser(t.Context(), "results@example.com", "Passw0rd!", "r", "")
	require.NoError(t, err)

	assessment := &models.Assessment{Title: "Bias Basics", IsPublished: true}
	require.NoError(t, CreateAssessment(t.Context(), assessment))

	for i := 0; i < 4; i++ {
		session := &models.AssessmentSession{
			UserID:       user.ID,
			AssessmentID: assessment.ID,
			Status:       models.SessionStatusInProgress,
		}
		require.NoError(t, database.DB.Create(session).Error)
		result := &models.AssessmentResult{
			SessionID:    session.ID,
			UserID:       user.ID,
			AssessmentID: assessment.ID,
			TotalScore:   i,
			MaxScore:     10,
		}
		require.NoError(t, CompleteSession(t.Context(), session, result))
	}

	recent, err := GetRecentResults(t.Context(), user.ID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	for _, r := range recent {
		assert.Equal(t, "Bias Basics", r.AssessmentTitle)
	}
}
