package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"expenselens/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStatementParser struct {
	resp *dto.StatementResponse
	err  error
}

func (f fakeStatementParser) ParseStatement(_ io.Reader) (*dto.StatementResponse, error) {
	return f.resp, f.err
}

func newStatementApp(parser StatementParser) *fiber.App {
	h := NewStatementHandler(parser, zap.NewNop())
	app := fiber.New()
	app.Post("/parse-pdf", h.ParseStatement)
	return app
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/parse-pdf", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestParseStatement_OK(t *testing.T) {
	paid := 4329.18
	app := newStatementApp(fakeStatementParser{resp: &dto.StatementResponse{
		Name:             "JOHN DOE",
		TotalMoneyPaid:   &paid,
		TotalExpense:     1000.00,
		Categories:       map[string]float64{"Food": 350.75, "Bills": 649.25},
		Percentages:      map[string]float64{"Food": 35.08, "Bills": 64.93},
		TransactionCount: 3,
	}})

	resp, err := app.Test(uploadRequest(t, "statement.pdf", []byte("%PDF-1.4")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.StatementResponse](t, resp)
	assert.Equal(t, "JOHN DOE", body.Name)
	assert.Equal(t, 3, body.TransactionCount)
	assert.InDelta(t, 350.75, body.Categories["Food"], 0.001)
}

func TestParseStatement_MissingFile(t *testing.T) {
	app := newStatementApp(fakeStatementParser{})

	req := httptest.NewRequest(http.MethodPost, "/parse-pdf", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "File is required", body.Error)
}

func TestParseStatement_RejectsNonPDF(t *testing.T) {
	app := newStatementApp(fakeStatementParser{})

	resp, err := app.Test(uploadRequest(t, "statement.txt", []byte("plain text")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "Only PDF statements are supported", body.Error)
}

func TestParseStatement_UnreadablePDF(t *testing.T) {
	app := newStatementApp(fakeStatementParser{err: errors.New("no extractable text")})

	resp, err := app.Test(uploadRequest(t, "statement.pdf", []byte("garbage")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "Could not read the uploaded PDF", body.Error)
}
