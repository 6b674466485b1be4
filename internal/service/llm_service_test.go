package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"expenselens/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEmbedTestService(serverURL string) *LLMService {
	return &LLMService{
		config:         &config.GigaChatConfig{Timeout: time.Second},
		logger:         zap.NewNop(),
		httpClient:     &http.Client{},
		baseURL:        serverURL,
		embeddingModel: "Embeddings",
		accessToken:    "token-0",
	}
}

func embedResponse(n int) []byte {
	type item struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	}
	items := make([]item, n)
	for i := range items {
		items[i] = item{Embedding: []float32{1, 0}, Index: i}
	}
	body, _ := json.Marshal(map[string]any{"data": items})
	return body
}

func TestEmbed_SendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write(embedResponse(1))
	}))
	defer server.Close()

	s := newEmbedTestService(server.URL)

	vectors, err := s.Embed(context.Background(), []string{"spending"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, "Bearer token-0", gotAuth)
}

func TestEmbed_UnauthorizedIsDetected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	s := newEmbedTestService(server.URL)

	_, err := s.embed(context.Background(), []string{"spending"})
	require.Error(t, err)
	assert.True(t, isUnauthorized(err))
}

func TestEmbed_TokenRefreshIsConcurrencySafe(t *testing.T) {
	// Every request must carry a complete token, even while another
	// goroutine is swapping the cached one in
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer token-") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write(embedResponse(1))
	}))
	defer server.Close()

	s := newEmbedTestService(server.URL)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.setAccessToken(fmt.Sprintf("token-%d-%d", n, j))
			}
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := s.embed(context.Background(), []string{"spending"})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.True(t, strings.HasPrefix(s.currentAccessToken(), "token-"))
}
