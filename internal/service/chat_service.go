package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const chatTemplate = `You are a financially savvy assistant helping a user analyze their
personal expenses.

You have access to:
1. Actual expense data (calculated programmatically):
%s

2. Relevant extracts from a previously generated detailed expense summary:
%s

3. A summary of the conversation so far, to maintain context and avoid
repetition:
%s

The user asked:
"%s"

Give a clear, accurate and contextual answer to the user's query.
- If the question can be answered from the expense data or the retrieved
  summary, do so directly.
- If the question is a follow-up or ambiguous, rely on the conversation
  summary for context.
- Be concise but insightful. If calculations are needed, show them clearly.`

// ConversationMemory tracks per-session chat history summaries.
type ConversationMemory interface {
	Summary(sessionID string) string
	Append(ctx context.Context, sessionID, query, answer string) error
}

// ChatService answers expense questions grounded in the retrieval index, the
// raw expense figures and the session's conversation summary.
type ChatService struct {
	llm    Generator
	index  SummaryIndex
	memory ConversationMemory
	topK   int
	logger *zap.Logger
}

func NewChatService(llm Generator, index SummaryIndex, memory ConversationMemory, topK int, logger *zap.Logger) *ChatService {
	return &ChatService{
		llm:    llm,
		index:  index,
		memory: memory,
		topK:   topK,
		logger: logger,
	}
}

// Answer resolves one chat turn. An empty sessionID starts a new session; the
// minted ID is returned so the client can continue the conversation.
func (s *ChatService) Answer(ctx context.Context, sessionID, query, expenses string) (answer, session string, err error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	retrieved, err := s.index.Search(ctx, query, s.topK)
	if err != nil {
		return "", "", fmt.Errorf("failed to retrieve summary context: %w", err)
	}

	prompt := fmt.Sprintf(chatTemplate, expenses, retrieved, s.memory.Summary(sessionID), query)
	answer, err = s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate answer: %w", err)
	}

	// The answer is already produced; losing the turn summary is preferable
	// to failing the request.
	if err := s.memory.Append(ctx, sessionID, query, answer); err != nil {
		s.logger.Warn("Failed to append conversation turn",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	return answer, sessionID, nil
}
