package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizerInvoke(t *testing.T) {
	var lastRequest summarizeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/summarize", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastRequest))
		json.NewEncoder(w).Encode(summarizeResponse{Summary: "short version"})
	}))
	defer server.Close()

	summarizer := NewSummarizer(server.URL)

	t.Run("returns plain text summary", func(t *testing.T) {
		out, err := summarizer.Invoke(context.Background(), map[string]any{
			"input_text": "a very long text",
		})
		require.NoError(t, err)
		assert.Equal(t, "short version", out)
		assert.Equal(t, "a very long text", lastRequest.Text)
	})

	t.Run("applies default length bounds", func(t *testing.T) {
		_, err := summarizer.Invoke(context.Background(), map[string]any{
			"input_text": "text",
		})
		require.NoError(t, err)
		assert.Equal(t, 130, lastRequest.MaxLength)
		assert.Equal(t, 30, lastRequest.MinLength)
	})

	t.Run("honors configured length bounds", func(t *testing.T) {
		// JSON-decoded configs carry numbers as float64.
		_, err := summarizer.Invoke(context.Background(), map[string]any{
			"input_text": "text",
			"max_length": float64(70),
			"min_length": float64(5),
		})
		require.NoError(t, err)
		assert.Equal(t, 70, lastRequest.MaxLength)
		assert.Equal(t, 5, lastRequest.MinLength)
	})

	t.Run("serializes structured upstream input", func(t *testing.T) {
		_, err := summarizer.Invoke(context.Background(), map[string]any{
			"input_text": map[string][]string{"h1": {"Title"}},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"h1":["Title"]}`, lastRequest.Text)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := summarizer.Invoke(context.Background(), map[string]any{})
		assert.ErrorContains(t, err, "input_text")

		_, err = summarizer.Invoke(context.Background(), map[string]any{"input_text": "  "})
		assert.ErrorContains(t, err, "input_text")
	})
}

func TestSummarizerSidecarFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewSummarizer(server.URL).Invoke(context.Background(), map[string]any{
		"input_text": "text",
	})
	assert.ErrorContains(t, err, "status code 503")
}
