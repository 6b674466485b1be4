package service

import (
	"fmt"
	"io"
	"strings"

	"expenselens/internal/analysis"
	"expenselens/internal/dto"
	"expenselens/internal/parser"

	"go.uber.org/zap"
)

// StatementService runs the statement pipeline: PDF pages -> extraction ->
// aggregation. Transaction records live only for the duration of one call;
// nothing is persisted.
type StatementService struct {
	pdfService *PDFService
	extractor  *parser.Extractor
	logger     *zap.Logger
}

func NewStatementService(pdfService *PDFService, extractor *parser.Extractor, logger *zap.Logger) *StatementService {
	return &StatementService{
		pdfService: pdfService,
		extractor:  extractor,
		logger:     logger,
	}
}

// ParseStatement parses an uploaded statement PDF into header metadata and a
// category breakdown. A document that yields no recognizable transactions is
// not an error: the caller gets an empty breakdown and can detect the
// mismatch from the zero transaction count.
func (s *StatementService) ParseStatement(file io.Reader) (*dto.StatementResponse, error) {
	pages, err := s.pdfService.ExtractPagesFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}

	fullText := strings.Join(pages, "\n")
	meta, records := s.extractor.Extract(fullText, pages[0])
	breakdown := analysis.Aggregate(records)

	s.logger.Info("Statement parsed",
		zap.Int("pages", len(pages)),
		zap.Int("transactions", len(records)),
		zap.Float64("total_expense", breakdown.TotalExpense),
	)

	return &dto.StatementResponse{
		Name:               meta.Name,
		Phone:              meta.Phone,
		Email:              meta.Email,
		Timeframe:          meta.Timeframe,
		TotalMoneyPaid:     meta.TotalMoneyPaid,
		TotalMoneyReceived: meta.TotalMoneyReceived,
		TotalExpense:       breakdown.TotalExpense,
		Categories:         breakdown.Amounts,
		Percentages:        breakdown.Percentages,
		TransactionCount:   len(records),
	}, nil
}
