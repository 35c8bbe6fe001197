package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/RaysoLee/mindreshape/internal/models"
	"github.com/RaysoLee/mindreshape/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrNotOwner is returned when the session belongs to another user.
	ErrNotOwner = errors.New("resource belongs to another user")
	// ErrSessionCompleted rejects writes against a submitted session.
	ErrSessionCompleted = errors.New("session is already completed")
	// ErrQuestionMismatch rejects an answer whose question belongs to a
	// different assessment than the session.
	ErrQuestionMismatch = errors.New("question does not belong to the session's assessment")
	// ErrEmptySelection rejects a choice answer with no options selected.
	ErrEmptySelection = errors.New("no options selected")
)

// QuizService orchestrates the attempt lifecycle: start/resume,
// answer recording and scored submission.
type QuizService struct {
	log *zap.Logger
}

func NewQuizService(log *zap.Logger) *QuizService {
	return &QuizService{log: log}
}

// StartResult is what the client needs to render a quiz: the session
// (fresh or resumed) and any previously saved answers.
type StartResult struct {
	Session *models.AssessmentSession `json:"session"`
	Resumed bool                      `json:"resumed"`
	Answers []models.Answer           `json:"answers"`
}

// StartOrResume finds the newest in-progress session for the user and
// assessment, or creates one. Saved answers are returned unchanged on
// resume.
func (s *QuizService) StartOrResume(ctx context.Context, userID, assessmentID string) (*StartResult, error) {
	if _, err := repository.GetPublishedAssessment(ctx, assessmentID); err != nil {
		return nil, err
	}

	session, resumed, err := repository.GetOrCreateSession(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}

	answers := []models.Answer{}
	if resumed {
		answers, err = repository.GetSessionAnswers(ctx, session.ID)
		if err != nil {
			return nil, err
		}
	}

	s.log.Debug("Quiz session ready",
		zap.String("sessionID", session.ID),
		zap.Bool("resumed", resumed),
		zap.Int("savedAnswers", len(answers)),
	)
	return &StartResult{Session: session, Resumed: resumed, Answers: answers}, nil
}

// RecordAnswer upserts the answer for (session, question). The whole
// selection replaces the previous one; single vs. multiple choice is a
// client concern, the server only stores the full set.
func (s *QuizService) RecordAnswer(ctx context.Context, userID, sessionID, questionID string, optionIDs []string, textAnswer string) error {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.SessionStatusInProgress {
		return ErrSessionCompleted
	}

	question, err := repository.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if question.AssessmentID != session.AssessmentID {
		return ErrQuestionMismatch
	}
	if question.Type != models.QuestionTypeText && len(optionIDs) == 0 {
		return ErrEmptySelection
	}

	return repository.SaveAnswer(ctx, &models.Answer{
		SessionID:  sessionID,
		QuestionID: questionID,
		OptionIDs:  optionIDs,
		TextAnswer: textAnswer,
	})
}

// Submit completes the session and persists its result. The score is
// computed here, on the server, from the stored answers and option
// weights; nothing is written when any lookup fails.
func (s *QuizService) Submit(ctx context.Context, userID, sessionID string) (*models.AssessmentResult, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusInProgress {
		return nil, ErrSessionCompleted
	}

	answers, err := repository.GetSessionAnswers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	questions, err := repository.GetAssessmentQuestions(ctx, session.AssessmentID)
	if err != nil {
		return nil, err
	}

	total, max, dimensions := scoreAnswers(questions, answers)
	dimensionJSON, err := json.Marshal(dimensions)
	if err != nil {
		return nil, err
	}

	result := &models.AssessmentResult{
		SessionID:       session.ID,
		UserID:          session.UserID,
		AssessmentID:    session.AssessmentID,
		TotalScore:      total,
		MaxScore:        max,
		DimensionScores: datatypes.JSON(dimensionJSON),
	}
	if err := repository.CompleteSession(ctx, session, result); err != nil {
		return nil, err
	}

	s.log.Info("Assessment submitted",
		zap.String("sessionID", session.ID),
		zap.Int("totalScore", total),
		zap.Int("maxScore", max),
	)
	return result, nil
}

// Result fetches the persisted result for a session the user owns.
func (s *QuizService) Result(ctx context.Context, userID, sessionID string) (*models.AssessmentResult, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return repository.GetResultBySession(ctx, sessionID)
}

func (s *QuizService) ownedSession(ctx context.Context, userID, sessionID string) (*models.AssessmentSession, error) {
	session, err := repository.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOwner
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotOwner
	}
	return session, nil
}

// scoreAnswers sums the score of every selected option, the
// per-question maximum option score, and the per-dimension sums of the
// selected options. Options are only counted against their own
// question, so stray IDs contribute nothing.
func scoreAnswers(questions []models.Question, answers []models.Answer) (total, max int, dimensions map[string]int) {
	dimensions = map[string]int{}

	optionsByQuestion := make(map[string]map[string]models.QuestionOption, len(questions))
	for _, q := range questions {
		byID := make(map[string]models.QuestionOption, len(q.Options))
		best := 0
		for _, opt := range q.Options {
			byID[opt.ID] = opt
			if opt.Score > best {
				best = opt.Score
			}
		}
		optionsByQuestion[q.ID] = byID
		max += best
	}

	for _, answer := range answers {
		options := optionsByQuestion[answer.QuestionID]
		for _, optionID := range answer.OptionIDs {
			opt, ok := options[optionID]
			if !ok {
				continue
			}
			total += opt.Score
			if opt.Dimension != "" {
				dimensions[opt.Dimension] += opt.Score
			}
		}
	}
	return total, max, dimensions
}
