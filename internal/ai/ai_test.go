package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New(context.Background(), Config{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = New(context.Background(), Config{Provider: "gemini"})
	assert.ErrorContains(t, err, "API key is required")

	_, err = New(context.Background(), Config{Provider: "openrouter", OpenRouterKey: "k"})
	assert.ErrorContains(t, err, "model is required")

	c, err = New(context.Background(), Config{Provider: "OpenRouter", OpenRouterKey: "k", OpenRouterModel: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenRouter{}, c)

	_, err = New(context.Background(), Config{Provider: "clippy"})
	assert.Error(t, err)
}

func TestOpenRouter_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Nf3"}}]}`))
	}))
	defer srv.Close()

	o, err := NewOpenRouter(OpenRouterConfig{APIKey: "key", Model: "some/model", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	answer, err := o.Complete(context.Background(), "best move?")
	require.NoError(t, err)
	assert.Equal(t, "Nf3", answer)
	assert.Equal(t, "some/model", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "best move?", got.Messages[0].Content)
	assert.False(t, got.Stream)
}

func TestOpenRouter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"status", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`},
		{"api error", http.StatusOK, `{"error":{"message":"bad model"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"garbage", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			o, err := NewOpenRouter(OpenRouterConfig{APIKey: "key", Model: "m", BaseURL: srv.URL}, srv.Client())
			require.NoError(t, err)
			_, err = o.Complete(context.Background(), "q")
			assert.Error(t, err)
		})
	}
}
