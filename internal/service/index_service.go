package service

import (
	"context"
	"fmt"
	"strings"

	"expenselens/internal/models"

	"go.uber.org/zap"
)

// SummaryIndex is the retrieval index over the chunks of the current summary
// generation. It is injected into the request-handling layer; the index holds
// one logical generation at a time and ReplaceAll invalidates everything
// previous. Concurrent ReplaceAll calls resolve last-writer-wins.
type SummaryIndex interface {
	ReplaceAll(ctx context.Context, chunks []models.SummaryChunk) error
	Search(ctx context.Context, query string, k int) (string, error)
}

// ChunkStore persists indexed chunks and answers nearest-neighbor queries.
type ChunkStore interface {
	ReplaceAll(ctx context.Context, chunks []models.IndexedChunk) error
	SearchSimilar(ctx context.Context, embedding []float32, k int) ([]string, error)
}

// Embedder converts texts into embedding vectors, one per input.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type RetrievalService struct {
	store    ChunkStore
	embedder Embedder
	logger   *zap.Logger
}

func NewRetrievalService(store ChunkStore, embedder Embedder, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// ReplaceAll embeds the chunks and swaps them in for the previous generation.
func (s *RetrievalService) ReplaceAll(ctx context.Context, chunks []models.SummaryChunk) error {
	indexed := make([]models.IndexedChunk, len(chunks))

	if len(chunks) > 0 {
		contents := make([]string, len(chunks))
		for i, chunk := range chunks {
			contents[i] = chunk.Content()
		}

		embeddings, err := s.embedder.Embed(ctx, contents)
		if err != nil {
			return fmt.Errorf("failed to embed summary chunks: %w", err)
		}

		for i, chunk := range chunks {
			indexed[i] = models.IndexedChunk{
				ID:        chunk.ID,
				Title:     chunk.Title,
				Content:   contents[i],
				Embedding: embeddings[i],
			}
		}
	}

	if err := s.store.ReplaceAll(ctx, indexed); err != nil {
		return fmt.Errorf("failed to replace indexed chunks: %w", err)
	}

	s.logger.Info("Retrieval index replaced", zap.Int("chunks", len(indexed)))
	return nil
}

// Search returns the k most similar chunk contents joined into one context
// string for the generation prompt.
func (s *RetrievalService) Search(ctx context.Context, query string, k int) (string, error) {
	embeddings, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	contents, err := s.store.SearchSimilar(ctx, embeddings[0], k)
	if err != nil {
		return "", fmt.Errorf("failed to search chunks: %w", err)
	}

	return strings.Join(contents, " "), nil
}
