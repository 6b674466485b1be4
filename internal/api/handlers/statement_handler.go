package handlers

import (
	"io"
	"path/filepath"
	"strings"

	"expenselens/internal/dto"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatementParser parses an uploaded statement PDF into a breakdown response.
type StatementParser interface {
	ParseStatement(file io.Reader) (*dto.StatementResponse, error)
}

type StatementHandler struct {
	statements StatementParser
	logger     *zap.Logger
}

func NewStatementHandler(statements StatementParser, logger *zap.Logger) *StatementHandler {
	return &StatementHandler{
		statements: statements,
		logger:     logger,
	}
}

// ParseStatement godoc
// @Summary Parse a statement PDF
// @Description Upload a UPI statement PDF and get the categorized expense breakdown
// @Tags statements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement PDF"
// @Success 200 {object} dto.StatementResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /parse-pdf [post]
func (h *StatementHandler) ParseStatement(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "File is required",
		})
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Only PDF statements are supported",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Failed to open file",
		})
	}
	defer src.Close()

	resp, err := h.statements.ParseStatement(src)
	if err != nil {
		h.logger.Warn("Failed to parse statement", zap.String("file", file.Filename), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Could not read the uploaded PDF",
		})
	}

	return c.JSON(resp)
}
