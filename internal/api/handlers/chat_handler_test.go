package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"expenselens/internal/dto"
	"expenselens/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSummarizer struct {
	summary string
	err     error
}

func (f fakeSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	return f.summary, f.err
}

type fakeChatter struct {
	answer  string
	session string
	err     error
}

func (f fakeChatter) Answer(_ context.Context, sessionID, _, _ string) (string, string, error) {
	if f.session != "" {
		sessionID = f.session
	}
	return f.answer, sessionID, f.err
}

func newChatApp(summarizer Summarizer, chatter Chatter) *fiber.App {
	h := NewChatHandler(summarizer, chatter, zap.NewNop())
	app := fiber.New()
	app.Get("/", h.Health)
	app.Post("/summarize", h.Summarize)
	app.Post("/chat", h.Chat)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealth(t *testing.T) {
	app := newChatApp(fakeSummarizer{}, fakeChatter{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Backend is running!", body["message"])
}

func TestSummarize_OK(t *testing.T) {
	app := newChatApp(fakeSummarizer{summary: "1. Spending\nMostly food.\n"}, fakeChatter{})

	resp := postJSON(t, app, "/summarize", dto.SummarizeRequest{Expenses: "Food: 350.75\nTotal: 1000.00\n"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.SummarizeResponse](t, resp)
	assert.Equal(t, "1. Spending\nMostly food.\n", body.Summary)
}

func TestSummarize_EmptyExpenses(t *testing.T) {
	app := newChatApp(fakeSummarizer{}, fakeChatter{})

	resp := postJSON(t, app, "/summarize", dto.SummarizeRequest{Expenses: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "Expenses is required", body.Error)
}

func TestSummarize_MalformedBody(t *testing.T) {
	app := newChatApp(fakeSummarizer{}, fakeChatter{})

	req := httptest.NewRequest(http.MethodPost, "/summarize", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSummarize_UpstreamErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"timeout", service.ErrUpstreamTimeout, http.StatusGatewayTimeout},
		{"unavailable", service.ErrUpstreamUnavailable, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newChatApp(fakeSummarizer{err: tt.err}, fakeChatter{})

			resp := postJSON(t, app, "/summarize", dto.SummarizeRequest{Expenses: "record"})
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestChat_OK(t *testing.T) {
	app := newChatApp(fakeSummarizer{}, fakeChatter{answer: "You spent 350.75 on Food.", session: "s1"})

	resp := postJSON(t, app, "/chat", dto.ChatRequest{
		Query:    "how much on food?",
		Expenses: "Food: 350.75",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.ChatResponse](t, resp)
	assert.Equal(t, "You spent 350.75 on Food.", body.Answer)
	assert.Equal(t, "s1", body.SessionID)
}

func TestChat_EmptyQuery(t *testing.T) {
	app := newChatApp(fakeSummarizer{}, fakeChatter{})

	resp := postJSON(t, app, "/chat", dto.ChatRequest{Expenses: "Food: 350.75"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "Query is required", body.Error)
}

func TestChat_UpstreamErrorMapping(t *testing.T) {
	app := newChatApp(fakeSummarizer{}, fakeChatter{err: service.ErrUpstreamTimeout})

	resp := postJSON(t, app, "/chat", dto.ChatRequest{Query: "q", Expenses: "e"})
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}
