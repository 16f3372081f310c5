package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/config"
	pkgretry "github.com/futig/chatbot-backend/internal/pkg/retry"
)

func testConfig(url string) config.EmbeddingConnectorConfig {
	cfg := config.EmbeddingConnectorConfig{
		Model: "test-model",
		Retry: pkgretry.RetryConfig{
			Attempts: 2,
			Delay:    time.Millisecond,
			MaxDelay: time.Millisecond,
		},
	}
	cfg.Url = url
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func TestConnector_Embed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/embeddings", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])
		assert.Equal(t, "hello world", req["input"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer server.Close()

	c := NewConnector(testConfig(server.URL), zap.NewNop())

	vec, err := c.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestConnector_EmbedEmptyResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	c := NewConnector(testConfig(server.URL), zap.NewNop())

	_, err := c.Embed(context.Background(), "hello")
	assert.Error(t, err)
}

func TestConnector_EmbedRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[1]}]}`))
	}))
	defer server.Close()

	c := NewConnector(testConfig(server.URL), zap.NewNop())

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, int32(2), calls.Load())
}

func TestConnector_EmbedDoesNotRetryBadRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewConnector(testConfig(server.URL), zap.NewNop())

	_, err := c.Embed(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}
