package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/RaysoLee/mindreshape/internal/llm"
	"github.com/RaysoLee/mindreshape/internal/models"
	"github.com/RaysoLee/mindreshape/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChatService(provider llm.Provider) *ChatService {
	return NewChatService(testLogger(), provider, 2048, 5*time.Second)
}

func TestNewConversationWithTopic(t *testing.T) {
	setupTestDB(t)
	chat := newTestChatService(llm.NewMockProvider())
	user := createTestUser(t, "chat@example.com")

	conversation, err := chat.NewConversation(t.Context(), user.ID, "anchoring bias")
	require.NoError(t, err)
	assert.Equal(t, "anchoring bias", conversation.Title)

	messages, err := repository.GetConversationMessages(t.Context(), conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, models.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "anchoring bias")
}

func TestNewConversationWithoutTopic(t *testing.T) {
	setupTestDB(t)
	chat := newTestChatService(llm.NewMockProvider())
	user := createTestUser(t, "chat@example.com")

	conversation, err := chat.NewConversation(t.Context(), user.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "New conversation", conversation.Title)

	messages, err := repository.GetConversationMessages(t.Context(), conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestTurnPersistsBothMessages(t *testing.T) {
	setupTestDB(t)
	mock := llm.NewMockProvider(llm.MockResponse{
		Text:  "Let's look at that together.",
		Usage: llm.Usage{InputTokens: 40, OutputTokens: 12},
	})
	chat := newTestChatService(mock)
	user := createTestUser(t, "chat@example.com")

	conversation, err := chat.NewConversation(t.Context(), user.ID, "")
	require.NoError(t, err)

	result, err := chat.Turn(t.Context(), user.ID, conversation.ID, "I keep assuming the worst about feedback.")
	require.NoError(t, err)
	assert.Equal(t, "Let's look at that together.", result.Message)
	assert.Equal(t, "mock", result.Model)
	assert.Equal(t, 52, result.Tokens)

	messages, err := repository.GetConversationMessages(t.Context(), conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)
	assert.Equal(t, "mock", messages[1].Metadata["model"])
}

func TestTurnFailureKeepsUserMessage(t *testing.T) {
	setupTestDB(t)
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrRateLimit{Err: fmt.Errorf("too many requests")},
	})
	chat := newTestChatService(mock)
	user := createTestUser(t, "chat@example.com")

	conversation, err := chat.NewConversation(t.Context(), user.ID, "")
	require.NoError(t, err)

	_, err = chat.Turn(t.Context(), user.ID, conversation.ID, "Hello?")
	var rateErr *llm.ErrRateLimit
	require.ErrorAs(t, err, &rateErr)

	// The user message stays; no assistant message was written.
	messages, err := repository.GetConversationMessages(t.Context(), conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, models.RoleUser, messages[0].Role)
}

func TestTurnTitlesConversationOnFirstTurn(t *testing.T) {
	setupTestDB(t)
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "first"},
		llm.MockResponse{Text: "second"},
	)
	chat := newTestChatService(mock)
	user := createTestUser(t, "chat@example.com")

	conversation, err := chat.NewConversation(t.Context(), user.ID, "")
	require.NoError(t, err)

	long := strings.Repeat("a", 60)
	_, err = chat.Turn(t.Context(), user.ID, conversation.ID, long)
	require.NoError(t, err)

	reloaded, err := repository.GetConversation(t.Context(), conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 50), reloaded.Title)

	// The second turn leaves the title alone.
	_, err = chat.Turn(t.Context(), user.ID, conversation.ID, "something else entirely")
	require.NoError(t, err)
	reloaded, err = repository.GetConversation(t.Context(), conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 50), reloaded.Title)
}

func TestTurnHistoryWindow(t *testing.T) {
	setupTestDB(t)
	mock := llm.NewMockProvider(llm.MockResponse{Text: "ok"})
	chat := newTestChatService(mock)
	user := createTestUser(t, "chat@example.com")

	conversation, err := chat.NewConversation(t.Context(), user.ID, "a seeded topic")
	require.NoError(t, err)

	// Backfill twelve alternating turns directly.
	for i := 0; i < 6; i++ {
		_, err := repository.CreateMessage(t.Context(), conversation.ID, models.RoleUser,
			fmt.Sprintf("question %d", i), nil)
		require.NoError(t, err)
		_, err = repository.CreateMessage(t.Context(), conversation.ID, models.RoleAssistant,
			fmt.Sprintf("answer %d", i), nil)
		require.NoError(t, err)
	}

	_, err = chat.Turn(t.Context(), user.ID, conversation.ID, "the new question")
	require.NoError(t, err)

	require.Len(t, mock.Calls, 1)
	sent := mock.Calls[0].Messages

	// A ten-entry window ending with the new message; the system row
	// and the oldest turns fell out.
	require.Len(t, sent, 10)
	assert.Equal(t, "answer 1", sent[0].Content)
	assert.Equal(t, llm.RoleAssistant, sent[0].Role)
	assert.Equal(t, "the new question", sent[9].Content)
	assert.Equal(t, llm.RoleUser, sent[9].Role)
	for _, m := range sent {
		assert.NotContains(t, m.Content, "seeded topic")
	}
}

func TestTurnIncludesRecentResultsInSystemPrompt(t *testing.T) {
	setupTestDB(t)
	mock := llm.NewMockProvider(llm.MockResponse{Text: "ok"})
	chat := newTestChatService(mock)
	quiz := NewQuizService(testLogger())
	user := createTestUser(t, "chat@example.com")
	assessment := createScoredAssessment(t)

	started, err := quiz.StartOrResume(t.Context(), user.ID, assessment.ID)
	require.NoError(t, err)
	q1 := assessment.Questions[0]
	require.NoError(t, quiz.RecordAnswer(t.Context(), user.ID, started.Session.ID, q1.ID,
		[]string{q1.Options[0].ID}, ""))
	_, err = quiz.Submit(t.Context(), user.ID, started.Session.ID)
	require.NoError(t, err)

	conversation, err := chat.NewConversation(t.Context(), user.ID, "")
	require.NoError(t, err)
	_, err = chat.Turn(t.Context(), user.ID, conversation.ID, "What do my results say?")
	require.NoError(t, err)

	require.Len(t, mock.Calls, 1)
	system := mock.Calls[0].System
	assert.Contains(t, system, "Attention Check")
	assert.Contains(t, system, "60%") // 3 of 5
	assert.Contains(t, system, "focus=3")
}

func TestTurnRejectsForeignConversation(t *testing.T) {
	setupTestDB(t)
	chat := newTestChatService(llm.NewMockProvider())
	user := createTestUser(t, "chat@example.com")
	other := createTestUser(t, "other@example.com")

	conversation, err := chat.NewConversation(t.Context(), user.ID, "")
	require.NoError(t, err)

	_, err = chat.Turn(t.Context(), other.ID, conversation.ID, "hi")
	assert.ErrorIs(t, err, ErrNotConversationOwner)

	_, err = chat.Turn(t.Context(), user.ID, "no-such-conversation", "hi")
	assert.ErrorIs(t, err, ErrNotConversationOwner)
}
