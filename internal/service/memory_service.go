package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Generator produces free-form text from a prompt. *LLMService satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const memoryTemplate = `Progressively summarize the conversation below, building on the
current summary. Keep the summary short and keep only the facts needed to
understand follow-up questions.

Current summary:
%s

New turn:
User: %s
Assistant: %s

New summary:`

// MemoryService keeps a running LLM-generated summary of each chat session.
// Sessions are isolated from one another, so concurrent conversations cannot
// cross-contaminate.
type MemoryService struct {
	generator Generator
	logger    *zap.Logger

	mu        sync.RWMutex
	summaries map[string]string
}

func NewMemoryService(generator Generator, logger *zap.Logger) *MemoryService {
	return &MemoryService{
		generator: generator,
		logger:    logger,
		summaries: make(map[string]string),
	}
}

// Summary returns the running summary for a session, or an empty string for
// an unknown session.
func (s *MemoryService) Summary(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaries[sessionID]
}

// Append folds one question/answer turn into the session's summary. Turns
// within a session are expected to arrive one at a time; if two Appends for
// the same session do race, the later write wins and the other turn is
// dropped from the summary, never merged into a corrupt one.
func (s *MemoryService) Append(ctx context.Context, sessionID, query, answer string) error {
	current := s.Summary(sessionID)

	updated, err := s.generator.Generate(ctx, fmt.Sprintf(memoryTemplate, current, query, answer))
	if err != nil {
		return fmt.Errorf("failed to summarize conversation turn: %w", err)
	}

	s.mu.Lock()
	s.summaries[sessionID] = updated
	s.mu.Unlock()

	s.logger.Debug("Conversation summary updated", zap.String("session_id", sessionID))
	return nil
}
