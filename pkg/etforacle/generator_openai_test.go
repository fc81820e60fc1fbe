package etforacle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGeneratorMapsURLCitations(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-search-preview-2025",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {
					"role": "assistant",
					"content": "Europe slipped.",
					"annotations": [
						{"type": "url_citation", "url_citation": {"start_index": 0, "end_index": 6, "title": "Reuters", "url": "https://reuters.com/x"}},
						{"type": "url_citation", "url_citation": {"start_index": 7, "end_index": 14, "title": "", "url": ""}}
					]
				}
			}]
		}`))
	}))
	defer server.Close()

	gen := newOpenAIGenerator("sk-test", "gpt-4o-search-preview", server.URL+"/", discardLogger())
	generation, err := gen.Generate(context.Background(), "Analyze STOXX 50")
	require.NoError(t, err)

	assert.Equal(t, "Europe slipped.", generation.Text)
	assert.Equal(t, "gpt-4o-search-preview-2025", generation.Model)
	assert.Equal(t, []Source{{Title: "Reuters", URI: "https://reuters.com/x"}, {}}, generation.Sources)

	assert.Equal(t, "gpt-4o-search-preview", payload["model"])
	assert.Contains(t, payload, "web_search_options")
	assert.NotContains(t, payload, "response_format")
}

func TestOpenAIGeneratorErrorIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "upstream exploded", "type": "server_error"}}`))
	}))
	defer server.Close()

	gen := newOpenAIGenerator("sk-test", "gpt-4o-search-preview", server.URL+"/", discardLogger())
	_, err := gen.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorContains(t, err, "openai chat completion failed")
	assert.Equal(t, 1, calls)
}
