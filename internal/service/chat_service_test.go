package service

import (
	"context"
	"errors"
	"testing"

	"expenselens/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSummaryIndex struct {
	replaced  [][]models.SummaryChunk
	searched  []string
	context   string
	searchErr error
}

func (f *fakeSummaryIndex) ReplaceAll(_ context.Context, chunks []models.SummaryChunk) error {
	f.replaced = append(f.replaced, chunks)
	return nil
}

func (f *fakeSummaryIndex) Search(_ context.Context, query string, _ int) (string, error) {
	f.searched = append(f.searched, query)
	return f.context, f.searchErr
}

type fakeMemory struct {
	summaries map[string]string
	appended  []string
	appendErr error
}

func (f *fakeMemory) Summary(sessionID string) string {
	return f.summaries[sessionID]
}

func (f *fakeMemory) Append(_ context.Context, sessionID, query, answer string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, sessionID+"|"+query+"|"+answer)
	return nil
}

func TestChatService_MintsSessionID(t *testing.T) {
	gen := &scriptedGenerator{}
	svc := NewChatService(gen, &fakeSummaryIndex{}, &fakeMemory{}, 2, zap.NewNop())

	_, session, err := svc.Answer(context.Background(), "", "how much on food?", "Food: 350.75")
	require.NoError(t, err)
	require.NotEmpty(t, session)

	_, err = uuid.Parse(session)
	assert.NoError(t, err, "minted session id must be a uuid")
}

func TestChatService_KeepsProvidedSessionID(t *testing.T) {
	gen := &scriptedGenerator{reply: func(string) (string, error) {
		return "You spent 350.75 on Food.", nil
	}}
	memory := &fakeMemory{summaries: map[string]string{}}
	svc := NewChatService(gen, &fakeSummaryIndex{}, memory, 2, zap.NewNop())

	answer, session, err := svc.Answer(context.Background(), "existing-session", "how much on food?", "Food: 350.75")
	require.NoError(t, err)
	assert.Equal(t, "existing-session", session)
	assert.Equal(t, "You spent 350.75 on Food.", answer)

	require.Len(t, memory.appended, 1)
	assert.Equal(t, "existing-session|how much on food?|You spent 350.75 on Food.", memory.appended[0])
}

func TestChatService_PromptGroundsAllSources(t *testing.T) {
	gen := &scriptedGenerator{}
	index := &fakeSummaryIndex{context: "1. Spending habits Mostly food."}
	memory := &fakeMemory{summaries: map[string]string{
		"s1": "User previously asked about bills.",
	}}
	svc := NewChatService(gen, index, memory, 2, zap.NewNop())

	_, _, err := svc.Answer(context.Background(), "s1", "what about food?", "Food: 350.75 (35.08%)")
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Food: 350.75 (35.08%)")
	assert.Contains(t, prompt, "1. Spending habits Mostly food.")
	assert.Contains(t, prompt, "User previously asked about bills.")
	assert.Contains(t, prompt, "what about food?")

	require.Len(t, index.searched, 1)
	assert.Equal(t, "what about food?", index.searched[0])
}

func TestChatService_SearchFailurePropagates(t *testing.T) {
	boom := errors.New("index down")
	svc := NewChatService(&scriptedGenerator{}, &fakeSummaryIndex{searchErr: boom}, &fakeMemory{}, 2, zap.NewNop())

	_, _, err := svc.Answer(context.Background(), "s1", "q", "expenses")
	require.ErrorIs(t, err, boom)
}

func TestChatService_GenerateFailurePropagates(t *testing.T) {
	gen := &scriptedGenerator{reply: func(string) (string, error) {
		return "", ErrUpstreamTimeout
	}}
	memory := &fakeMemory{}
	svc := NewChatService(gen, &fakeSummaryIndex{}, memory, 2, zap.NewNop())

	_, _, err := svc.Answer(context.Background(), "s1", "q", "expenses")
	require.ErrorIs(t, err, ErrUpstreamTimeout)
	assert.Empty(t, memory.appended)
}

func TestChatService_MemoryFailureDoesNotFailAnswer(t *testing.T) {
	gen := &scriptedGenerator{reply: func(string) (string, error) {
		return "the answer", nil
	}}
	memory := &fakeMemory{appendErr: errors.New("memory down")}
	svc := NewChatService(gen, &fakeSummaryIndex{}, memory, 2, zap.NewNop())

	answer, session, err := svc.Answer(context.Background(), "s1", "q", "expenses")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	assert.Equal(t, "s1", session)
}
