package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/thinkforge-api/internal/config"
	"github.com/phrazzld/thinkforge-api/internal/generation"
)

func newTestCompleter(t *testing.T, handler http.HandlerFunc) *Completer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(config.LLMConfig{AnthropicAPIKey: "test-key", MaxOutputTokens: 256}, nil,
		option.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func messageResponse(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       DefaultModel,
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(config.LLMConfig{}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestCompleteHappyPath(t *testing.T) {
	var req map[string]any
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &req))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse(`{"cards":[{"frontHTML":"a","backHTML":"b"}]}`, "end_turn"))
	})

	text, err := c.Complete(context.Background(), generation.Prompt{System: "sys", User: "cards on Go"})
	require.NoError(t, err)
	assert.Equal(t, `{"cards":[{"frontHTML":"a","backHTML":"b"}]}`, text)
	assert.Equal(t, DefaultModel, req["model"])
	assert.EqualValues(t, 256, req["max_tokens"])
	assert.NotNil(t, req["system"])
}

func TestCompleteErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, generation.ErrTransientFailure},
		{"overloaded", 529, generation.ErrTransientFailure},
		{"bad request", http.StatusBadRequest, generation.ErrGenerationFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": "api_error", "message": "nope"},
				})
			})

			_, err := c.Complete(context.Background(), generation.Prompt{User: "x"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
