package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"expenselens/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LLMService wraps the GigaChat API: text generation through the gigago
// client and embeddings through the REST endpoint with a cached OAuth token.
type LLMService struct {
	client         *gigago.Client
	model          *gigago.GenerativeModel
	config         *config.GigaChatConfig
	logger         *zap.Logger
	httpClient     *http.Client
	baseURL        string
	embeddingModel string

	tokenMu     sync.Mutex
	accessToken string // Cached access token for direct REST calls; guarded by tokenMu
}

func buildSystemInstruction() string {
	return `You are a financial advisor analyzing a user's personal expense data.
Base every figure you state on the data provided in the request. Be concise,
accurate and practical; when a calculation is needed, show it. Never invent
transactions or amounts that are not in the data.`
}

func NewLLMService(cfg *config.GigaChatConfig, ragCfg *config.RAGConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = buildSystemInstruction()
	model.Temperature = 0

	// HTTP client for the embeddings endpoint, which gigago does not cover
	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	accessToken, err := getAccessToken(ctx, cfg, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return &LLMService{
		client:      client,
		model:       model,
		config:      cfg,
		logger:      logger,
		httpClient:  httpClient,
		accessToken: accessToken,
		// Base URL for the GigaChat REST API
		// Documentation: https://developers.sber.ru/docs/ru/gigachat/api/main
		baseURL:        "https://gigachat.devices.sberbank.ru/api/v1",
		embeddingModel: ragCfg.EmbeddingModel,
	}, nil
}

// getAccessToken obtains an access token from the GigaChat OAuth endpoint.
// The API key is expected to be Base64-encoded already, per the API docs.
func getAccessToken(ctx context.Context, cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger) (string, error) {
	oauthURL := "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
		)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	return oauthResp.AccessToken, nil
}

// Generate sends a prompt to the model and returns its text response. The
// call is bounded by the configured timeout; an expiry surfaces as
// ErrUpstreamTimeout, any other failure as ErrUpstreamUnavailable.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", wrapUpstream("generation", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generation: %w: no choices in response", ErrUpstreamUnavailable)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Embed returns one embedding vector per input, in input order.
// Endpoint: POST /embeddings
func (s *LLMService) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	embeddings, err := s.embed(ctx, inputs)
	if err == nil {
		return embeddings, nil
	}

	// One retry after a token refresh: the cached token may have expired
	if !isUnauthorized(err) {
		return nil, err
	}
	accessToken, tokenErr := getAccessToken(ctx, s.config, s.httpClient, s.logger)
	if tokenErr != nil {
		return nil, wrapUpstream("embedding token refresh", tokenErr)
	}
	s.setAccessToken(accessToken)

	return s.embed(ctx, inputs)
}

// Embed is called concurrently from request handlers while the 401 retry may
// be refreshing the token, so all token access goes through these two.
func (s *LLMService) setAccessToken(token string) {
	s.tokenMu.Lock()
	s.accessToken = token
	s.tokenMu.Unlock()
}

func (s *LLMService) currentAccessToken() string {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	return s.accessToken
}

type unauthorizedError struct{ body string }

func (e *unauthorizedError) Error() string {
	return fmt.Sprintf("embeddings request unauthorized: %s", e.body)
}

func isUnauthorized(err error) bool {
	var ue *unauthorizedError
	return errors.As(err, &ue)
}

func (s *LLMService) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	requestBody := map[string]interface{}{
		"model": s.embeddingModel,
		"input": inputs,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.currentAccessToken())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, wrapUpstream("embedding", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &unauthorizedError{body: string(bodyBytes)}
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding: %w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, string(bodyBytes))
	}

	var embResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}
	if len(embResp.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding: %w: got %d vectors for %d inputs", ErrUpstreamUnavailable, len(embResp.Data), len(inputs))
	}

	embeddings := make([][]float32, len(inputs))
	for _, item := range embResp.Data {
		if item.Index < 0 || item.Index >= len(inputs) {
			return nil, fmt.Errorf("embedding: %w: index %d out of range", ErrUpstreamUnavailable, item.Index)
		}
		embeddings[item.Index] = item.Embedding
	}

	return embeddings, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
