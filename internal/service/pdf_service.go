package service

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// PDFService extracts per-page text from statement PDFs using go-fitz.
type PDFService struct {
	logger *zap.Logger
}

func NewPDFService(logger *zap.Logger) *PDFService {
	return &PDFService{logger: logger}
}

// ExtractPages returns the text of every page in page order. A page that
// fails to render yields an empty string so page indexes stay stable; header
// extraction relies on page one keeping its position.
func (s *PDFService) ExtractPages(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", path),
				zap.Error(err),
			)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText)
	}

	if strings.TrimSpace(strings.Join(pages, "")) == "" {
		return nil, fmt.Errorf("no text found in PDF")
	}

	s.logger.Info("PDF text extracted",
		zap.String("file", path),
		zap.Int("pages", len(pages)),
	)

	return pages, nil
}

// ExtractPagesFromReader extracts page text from an uploaded PDF stream. The
// stream is spooled to a temp file because go-fitz needs a file path.
func (s *PDFService) ExtractPagesFromReader(reader io.Reader) ([]string, error) {
	tmpFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := io.Copy(tmpFile, reader); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to copy file data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush temp file: %w", err)
	}

	return s.ExtractPages(tmpFile.Name())
}
