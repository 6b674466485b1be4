package service

import (
	"context"
	"fmt"

	"expenselens/internal/summary"

	"go.uber.org/zap"
)

const summaryTemplate = `You are a financial advisor. Here is a user's financial record:

%s

Note: the expenses listed above cover the entire timeframe specified, which
may span multiple months. Use the provided monthly income to compute
percentages and evaluate spending patterns on a per-month basis.

Please analyze this and provide:
1. A concise summary of spending habits
2. Biggest 2-3 expense categories (with %% of income)
3. Spending split: Essentials vs Non-Essentials
4. How the user did against their savings goal
5. Red flags (overspending areas, debt risk, imbalance)
6. 2-3 personalized recommendations to improve finances`

// SummaryService generates the free-text financial summary and refreshes the
// retrieval index with its sections.
type SummaryService struct {
	llm    Generator
	index  SummaryIndex
	logger *zap.Logger
}

func NewSummaryService(llm Generator, index SummaryIndex, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		llm:    llm,
		index:  index,
		logger: logger,
	}
}

// Summarize generates a summary of the expense record, segments it into
// titled chunks and replaces the retrieval index contents with them. The
// previous generation's chunks are gone once this returns.
func (s *SummaryService) Summarize(ctx context.Context, expenses string) (string, error) {
	text, err := s.llm.Generate(ctx, fmt.Sprintf(summaryTemplate, expenses))
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	chunks := summary.Segment(text)
	if err := s.index.ReplaceAll(ctx, chunks); err != nil {
		return "", fmt.Errorf("failed to index summary: %w", err)
	}

	s.logger.Info("Summary generated and indexed",
		zap.Int("length", len(text)),
		zap.Int("chunks", len(chunks)),
	)

	return text, nil
}
