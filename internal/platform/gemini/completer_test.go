package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/phrazzld/thinkforge-api/internal/config"
	"github.com/phrazzld/thinkforge-api/internal/generation"
)

func newTestCompleter(t *testing.T, handler http.HandlerFunc) *Completer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), config.LLMConfig{
		GeminiAPIKey:    "test-key",
		Temperature:     0.3,
		MaxOutputTokens: 512,
	}, nil, WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), config.LLMConfig{}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestCompleteReturnsText(t *testing.T) {
	var body string
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"cards\":[]}"}]},"finishReason":"STOP"}]}`)
	})
	assert.Equal(t, DefaultModel, c.Model())

	text, err := c.Complete(context.Background(), generation.Prompt{
		System: "be brief",
		User:   "cards about Go",
		Schema: generation.FlashcardSchema,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"cards":[]}`, text)
	assert.Contains(t, body, "cards about Go")
	assert.Contains(t, body, "be brief")
	assert.Contains(t, body, "application/json")
}

func TestCompleteSafetyBlock(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"x"}]},"finishReason":"SAFETY"}]}`)
	})

	_, err := c.Complete(context.Background(), generation.Prompt{User: "x"})
	assert.ErrorIs(t, err, generation.ErrContentBlocked)
}

func TestCompleteNoCandidates(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"candidates":[]}`)
	})

	_, err := c.Complete(context.Background(), generation.Prompt{User: "x"})
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}

func TestCompleteServerErrorIsTransient(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprint(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
	})

	_, err := c.Complete(context.Background(), generation.Prompt{User: "x"})
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.True(t, generation.IsRetryable(err))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", genai.APIError{Code: http.StatusTooManyRequests}, generation.ErrTransientFailure},
		{"server error", genai.APIError{Code: http.StatusBadGateway}, generation.ErrTransientFailure},
		{"bad request", genai.APIError{Code: http.StatusBadRequest}, generation.ErrGenerationFailed},
		{"network", errors.New("connection reset"), generation.ErrTransientFailure},
		{"cancelled", context.Canceled, context.Canceled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tc.err), tc.want)
		})
	}
}

func TestBuildSchema(t *testing.T) {
	schema := buildSchema(generation.FlashcardSchema.Definition)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"cards"}, schema.Required)
	cards := schema.Properties["cards"]
	require.NotNil(t, cards)
	assert.Equal(t, genai.TypeArray, cards.Type)
	require.NotNil(t, cards.Items)
	assert.Equal(t, genai.TypeInteger, cards.Items.Properties["id"].Type)
	assert.Equal(t, genai.TypeString, cards.Items.Properties["frontHTML"].Type)
	assert.ElementsMatch(t, []string{"frontHTML", "backHTML"}, cards.Items.Required)
}
