package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RaysoLee/mindreshape/internal/llm"
	"github.com/RaysoLee/mindreshape/internal/models"
	"github.com/RaysoLee/mindreshape/internal/repository"
	"github.com/RaysoLee/mindreshape/internal/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// coachSystemPrompt is the fixed instruction preamble sent on every
// turn. Recent assessment results get appended to it per user.
const coachSystemPrompt = `You are the MindReShape assistant, a coach that helps users explore and improve their thinking patterns.

Your core abilities:
1. Identify and explain cognitive biases (confirmation bias, availability bias, anchoring, and others)
2. Analyze the user's decision processes and thinking patterns
3. Offer practical critical-thinking exercises
4. Help the user build more rational, objective thinking habits

Conversation style:
- Friendly, professional and empathetic
- Plain language, never overly academic
- Guide self-reflection through questions
- Give concrete examples and actionable suggestions
- Encourage the user to share genuine thoughts and experiences

When the user mentions their assessment results, base your analysis and advice on the result data.
Stay neutral and non-judgmental, and respect the user's point of view.`

const (
	// historyWindow bounds the turns sent to the model: the most
	// recent ten non-system messages, FIFO.
	historyWindow = 10
	// titleMaxRunes is the length of the title derived from the first
	// user message.
	titleMaxRunes = 50
	// recentResultsLimit is how many assessment results personalize
	// the preamble.
	recentResultsLimit = 3

	defaultConversationTitle = "New conversation"
)

// ErrNotConversationOwner covers both a missing conversation and one
// owned by another user; callers answer 403 either way.
var ErrNotConversationOwner = errors.New("conversation does not belong to the caller")

// ChatService runs the turn loop against the external language model.
type ChatService struct {
	log       *zap.Logger
	provider  llm.Provider
	maxTokens int
	timeout   time.Duration
}

func NewChatService(log *zap.Logger, provider llm.Provider, maxTokens int, timeout time.Duration) *ChatService {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &ChatService{log: log, provider: provider, maxTokens: maxTokens, timeout: timeout}
}

// NewConversation creates a conversation, titled after the topic when
// one is given, with one hidden system message seeding that topic.
func (s *ChatService) NewConversation(ctx context.Context, userID, topic string) (*models.Conversation, error) {
	title := topic
	if title == "" {
		title = defaultConversationTitle
	}

	conversation := &models.Conversation{
		UserID: userID,
		Title:  title,
	}
	if err := repository.CreateConversation(ctx, conversation); err != nil {
		return nil, err
	}

	if topic != "" {
		_, err := repository.CreateMessage(ctx, conversation.ID, models.RoleSystem,
			fmt.Sprintf("The user wants to discuss: %s", topic), nil)
		if err != nil {
			return nil, err
		}
	}
	return conversation, nil
}

// TurnResult is the reply of one completed turn.
type TurnResult struct {
	Message string `json:"message"`
	Model   string `json:"model"`
	Tokens  int    `json:"tokens"`
}

// Turn runs one chat turn: persist the user message, call the model
// with the preamble plus a bounded history window, persist the reply,
// maintain the conversation title and ordering timestamp. When the
// model call fails the user message stays persisted and the error is
// returned without retry.
func (s *ChatService) Turn(ctx context.Context, userID, conversationID, text string) (*TurnResult, error) {
	conversation, err := repository.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotConversationOwner
		}
		return nil, err
	}
	if conversation.UserID != userID {
		return nil, ErrNotConversationOwner
	}

	userMessage, err := repository.CreateMessage(ctx, conversationID, models.RoleUser, text, nil)
	if err != nil {
		return nil, err
	}

	// The stored transcript now ends with the just-saved user message;
	// the window is the last historyWindow non-system entries of it.
	history, err := repository.GetConversationMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	system := coachSystemPrompt
	if summary, err := s.recentResultsSummary(ctx, userID); err != nil {
		// Personalization is best effort; the turn proceeds without it.
		s.log.Warn("Failed to load recent results for chat context", zap.Error(err))
	} else {
		system += summary
	}

	request := llm.Request{
		System:    system,
		Messages:  historyFor(history),
		MaxTokens: s.maxTokens,
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	response, err := s.provider.Complete(callCtx, request)
	if err != nil {
		s.log.Error("Language model call failed",
			zap.String("conversationID", conversationID),
			zap.Error(err),
		)
		return nil, err
	}

	tokens := response.Usage.TotalTokens()
	_, err = repository.CreateMessage(ctx, conversationID, models.RoleAssistant, response.Text,
		datatypes.JSONMap{"model": response.Model, "tokens": tokens})
	if err != nil {
		return nil, err
	}

	// First user turn names the conversation after the message.
	userTurns, err := repository.CountUserMessages(ctx, conversationID)
	if err == nil && userTurns == 1 {
		title := utils.TruncateRunes(text, titleMaxRunes)
		if err := repository.UpdateConversationTitle(ctx, conversationID, title); err != nil {
			s.log.Warn("Failed to update conversation title", zap.Error(err))
		}
	}
	if err := repository.TouchConversation(ctx, conversationID); err != nil {
		s.log.Warn("Failed to touch conversation", zap.Error(err))
	}

	s.log.Debug("Chat turn completed",
		zap.String("conversationID", conversationID),
		zap.String("userMessageID", userMessage.ID),
		zap.Int("tokens", tokens),
	)
	return &TurnResult{Message: response.Text, Model: response.Model, Tokens: tokens}, nil
}

// historyFor converts stored messages into the model history window:
// system rows dropped, then the last historyWindow entries, the newest
// user message last.
func historyFor(messages []models.Message) []llm.Message {
	filtered := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case models.RoleUser:
			filtered = append(filtered, llm.Message{Role: llm.RoleUser, Content: m.Content})
		case models.RoleAssistant:
			filtered = append(filtered, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
		}
	}
	if len(filtered) > historyWindow {
		filtered = filtered[len(filtered)-historyWindow:]
	}
	return filtered
}

// recentResultsSummary renders the user's latest results as a short
// narrative block appended to the system prompt. Empty when the user
// has no results yet.
func (s *ChatService) recentResultsSummary(ctx context.Context, userID string) (string, error) {
	results, err := repository.GetRecentResults(ctx, userID, recentResultsLimit)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("\n\nThe user's recent assessment results:\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("- %s: %d%%\n", r.AssessmentTitle, r.Percentage()))
		if dims := formatDimensions(r.DimensionScores); dims != "" {
			sb.WriteString(fmt.Sprintf("  dimensions: %s\n", dims))
		}
	}
	return sb.String(), nil
}

func formatDimensions(raw datatypes.JSON) string {
	scores := map[string]int{}
	if err := json.Unmarshal(raw, &scores); err != nil || len(scores) == 0 {
		return ""
	}

	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, scores[k]))
	}
	return strings.Join(parts, ", ")
}
