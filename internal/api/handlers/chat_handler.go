package handlers

import (
	"context"
	"errors"
	"strings"

	"expenselens/internal/dto"
	"expenselens/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Summarizer generates and indexes a financial summary of an expense record.
type Summarizer interface {
	Summarize(ctx context.Context, expenses string) (string, error)
}

// Chatter answers one chat turn grounded in the indexed summary.
type Chatter interface {
	Answer(ctx context.Context, sessionID, query, expenses string) (answer, session string, err error)
}

type ChatHandler struct {
	summarizer Summarizer
	chatter    Chatter
	logger     *zap.Logger
}

func NewChatHandler(summarizer Summarizer, chatter Chatter, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		summarizer: summarizer,
		chatter:    chatter,
		logger:     logger,
	}
}

// Health godoc
// @Summary Liveness check
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *ChatHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Backend is running!"})
}

// Summarize godoc
// @Summary Summarize an expense record
// @Description Generate a financial summary and refresh the retrieval index with its sections
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.SummarizeRequest true "Expense record"
// @Success 200 {object} dto.SummarizeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 504 {object} dto.ErrorResponse
// @Router /summarize [post]
func (h *ChatHandler) Summarize(c *fiber.Ctx) error {
	var req dto.SummarizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	if strings.TrimSpace(req.Expenses) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Expenses is required"})
	}

	summary, err := h.summarizer.Summarize(c.Context(), req.Expenses)
	if err != nil {
		h.logger.Error("Failed to summarize expenses", zap.Error(err))
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SummarizeResponse{Summary: summary})
}

// Chat godoc
// @Summary Ask a question about the expenses
// @Description Answer a query using the indexed summary, the raw figures and the session's conversation memory
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Query"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 504 {object} dto.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Query is required"})
	}

	answer, sessionID, err := h.chatter.Answer(c.Context(), req.SessionID, req.Query, req.Expenses)
	if err != nil {
		h.logger.Error("Failed to answer query", zap.Error(err))
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.ChatResponse{Answer: answer, SessionID: sessionID})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrUpstreamTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
