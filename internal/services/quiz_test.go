package services

import (
	"encoding/json"
	"testing"

	"github.com/RaysoLee/mindreshape/internal/database"
	"github.com/RaysoLee/mindreshape/internal/models"
	"github.com/RaysoLee/mindreshape/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOrResume(t *testing.T) {
	setupTestDB(t)
	quiz := NewQuizService(testLogger())
	user := createTestUser(t, "quiz@example.com")
	assessment := createScoredAssessment(t)

	started, err := quiz.StartOrResume(t.Context(), user.ID, assessment.ID)
	require.NoError(t, err)
	assert.False(t, started.Resumed)
	assert.Equal(t, models.SessionStatusInProgress, started.Session.Status)
	assert.Empty(t, started.Answers)

	q1 := assessment.Questions[0]
	err = quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID, q1.ID,
		[]string{q1.Options[0].ID}, "")
	require.NoError(t, err)

	resumed, err := quiz.StartOrResume(t.Context(), user.ID, assessment.ID)
	require.NoError(t, err)
	assert.True(t, resumed.Resumed)
	assert.Equal(t, started.Session.ID, resumed.Session.ID)
	require.Len(t, resumed.Answers, 1)
	assert.Equal(t, q1.ID, resumed.Answers[0].QuestionID)
}

func TestStartOrResumeUnknownAssessment(t *testing.T) {
	setupTestDB(t)
	quiz := NewQuizService(testLogger())
	user := createTestUser(t, "quiz@example.com")

	_, err := quiz.StartOrResume(t.Context(), user.ID, "missing")
	assert.Error(t, err)
}

func TestRecordAnswerReplacesSelection(t *testing.T) {
	setupTestDB(t)
	quiz := NewQuizService(testLogger())
	user := createTestUser(t, "quiz@example.com")
	assessment := createScoredAssessment(t)

	started, err := quiz.StartOrResume(t.Context(), user.ID, assessment.ID)
	require.NoError(t, err)

	q1 := assessment.Questions[0]
	require.NoError(t, quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID, q1.ID,
		[]string{q1.Options[0].ID}, ""))
	require.NoError(t, quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID, q1.ID,
		[]string{q1.Options[1].ID}, ""))

	answers, err := repository.GetSessionAnswers(t.Context(), started.Session.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	require.Len(t, answers[0].OptionIDs, 1)
	assert.Equal(t, q1.Options[1].ID, answers[0].OptionIDs[0])
}

func TestRecordAnswerValidation(t *testing.T) {
	setupTestDB(t)
	quiz := NewQuizService(testLogger())
	user := createTestUser(t, "quiz@example.com")
	other := createTestUser(t, "other@example.com")
	assessment := createScoredAssessment(t)
	q1 := assessment.Questions[0]

	started, err := quiz.StartOrResume(t.Context(), user.ID, assessment.ID)
	require.NoError(t, err)

	// Someone else's session looks like it does not exist.
	err = quiz.RecordAnswer(t.Context(), other.ID, started.Session.ID, q1.ID,
		[]string{q1.Options[0].ID}, "")
	assert.ErrorIs(t, err, ErrNotOwner)

	// A choice answer needs at least one option.
	err = quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID, q1.ID, nil, "")
	assert.ErrorIs(t, err, ErrEmptySelection)

	// A question from another assessment is rejected.
	otherAssessment := createScoredAssessment(t)
	err = quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID,
		otherAssessment.Questions[0].ID,
		[]string{otherAssessment.Questions[0].Options[0].ID}, "")
	assert.ErrorIs(t, err, ErrQuestionMismatch)
}

func TestSubmitScoresSession(t *testing.T) {
	setupTestDB(t)
	quiz := NewQuizService(testLogger())
	user := createTestUser(t, "quiz@example.com")
	assessment := createScoredAssessment(t)
	q1, q2 := assessment.Questions[0], assessment.Questions[1]

	started, err := quiz.StartOrResume(t.Context(), user.ID, assessment.ID)
	require.NoError(t, err)

	require.NoError(t, quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID, q1.ID,
		[]string{q1.Options[0].ID}, "")) // 3, focus
	require.NoError(t, quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID, q2.ID,
		[]string{q2.Options[0].ID}, "")) // 2, calm

	result, err := quiz.Submit(t.Context(), user.ID, started.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalScore)
	assert.Equal(t, 5, result.MaxScore)
	assert.Equal(t, 100, result.Percentage())

	dimensions := map[string]int{}
	require.NoError(t, json.Unmarshal(result.DimensionScores, &dimensions))
	assert.Equal(t, map[string]int{"focus": 3, "calm": 2}, dimensions)

	// Completed sessions reject further writes and a second submit.
	err = quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID, q1.ID,
		[]string{q1.Options[1].ID}, "")
	assert.ErrorIs(t, err, ErrSessionCompleted)
	_, err = quiz.Submit(t.Context(), user.ID, started.Session.ID)
	assert.ErrorIs(t, err, ErrSessionCompleted)

	// The stats counter moved with the submit.
	stats, err := repository.GetUserStats(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalAssessments)
}

func TestSubmitLowScore(t *testing.T) {
	setupTestDB(t)
	quiz := NewQuizService(testLogger())
	user := createTestUser(t, "quiz@example.com")
	assessment := createScoredAssessment(t)
	q1, q2 := assessment.Questions[0], assessment.Questions[1]

	started, err := quiz.StartOrResume(t.Context(), user.ID, assessment.ID)
	require.NoError(t, err)

	require.NoError(t, quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID, q1.ID,
		[]string{q1.Options[1].ID}, "")) // 1
	require.NoError(t, quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID, q2.ID,
		[]string{q2.Options[1].ID}, "")) // 0

	result, err := quiz.Submit(t.Context(), user.ID, started.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalScore)
	assert.Equal(t, 5, result.MaxScore)
	assert.Equal(t, 20, result.Percentage())
}

func TestSubmitWithoutAnswers(t *testing.T) {
	setupTestDB(t)
	quiz := NewQuizService(testLogger())
	user := createTestUser(t, "quiz@example.com")
	assessment := createScoredAssessment(t)

	started, err := quiz.StartOrResume(t.Context(), user.ID, assessment.ID)
	require.NoError(t, err)

	result, err := quiz.Submit(t.Context(), user.ID, started.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalScore)
	assert.Equal(t, 5, result.MaxScore)
	assert.Equal(t, 0, result.Percentage())

	dimensions := map[string]int{}
	require.NoError(t, json.Unmarshal(result.DimensionScores, &dimensions))
	assert.Empty(t, dimensions)
}

func TestResultRequiresOwnership(t *testing.T) {
	setupTestDB(t)
	quiz := NewQuizService(testLogger())
	user := createTestUser(t, "quiz@example.com")
	other := createTestUser(t, "other@example.com")
	assessment := createScoredAssessment(t)

	started, err := quiz.StartOrResume(t.Context(), user.ID, assessment.ID)
	require.NoError(t, err)
	_, err = quiz.Submit(t.Context(), user.ID, started.Session.ID)
	require.NoError(t, err)

	_, err = quiz.Result(t.Context(), other.ID, started.Session.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	result, err := quiz.Result(t.Context(), user.ID, started.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, started.Session.ID, result.SessionID)
}

func TestConcurrentStartsCreateSeparateSessions(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "quiz@example.com")
	assessment := createScoredAssessment(t)

	// Two creates race past the lookup: both sessions exist afterwards
	// and resume picks the newest.
	first := &models.AssessmentSession{UserID: user.ID, AssessmentID: assessment.ID, Status: models.SessionStatusInProgress}
	second := &models.AssessmentSession{UserID: user.ID, AssessmentID: assessment.ID, Status: models.SessionStatusInProgress}
	require.NoError(t, database.DB.Create(first).Error)
	require.NoError(t, database.DB.Create(second).Error)

	sessions, err := repository.GetRecentSessions(t.Context(), user.ID, assessment.ID, 10)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
