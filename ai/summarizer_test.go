package ai

import (
	"chat-relay/errors"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionServer(t *testing.T, content string, received *chatRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": ` + content + `}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
		}`))
	}))
}

func TestOpenAISummarizer_Summarize(t *testing.T) {
	req := require.New(t)
	var received chatRequest
	server := completionServer(t, `"  we talked about go  "`, &received)
	defer server.Close()
	summarizer := NewOpenAISummarizer(logs.GetLoggerFromLevel(slog.LevelDebug), "test-key", server.URL, "", 50)

	// When summarizing a conversation
	summary, err := summarizer.Summarize(context.Background(), "<s>go is fun</s> <s>yes</s>")

	// Then the trimmed completion is returned
	req.NoError(err)
	req.Equal("we talked about go", summary)

	// And the conversation was sent as the user message
	req.Equal("gpt-4o-mini", received.Model)
	req.Len(received.Messages, 2)
	req.Equal("system", received.Messages[0].Role)
	req.Contains(received.Messages[0].Content, "at most 50 words")
	req.Equal("user", received.Messages[1].Role)
	req.Equal("<s>go is fun</s> <s>yes</s>", received.Messages[1].Content)
}

func TestOpenAISummarizer_Empty_Completion(t *testing.T) {
	req := require.New(t)
	var received chatRequest
	server := completionServer(t, `""`, &received)
	defer server.Close()
	summarizer := NewOpenAISummarizer(logs.GetLoggerFromLevel(slog.LevelDebug), "test-key", server.URL, "gpt-4o", 50)

	_, err := summarizer.Summarize(context.Background(), "<s>hi</s>")

	req.ErrorIs(err, errors.ErrEmptySummary)
	req.Equal("gpt-4o", received.Model)
}

func TestOpenAISummarizer_Upstream_Failure(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()
	summarizer := NewOpenAISummarizer(logs.GetLoggerFromLevel(slog.LevelDebug), "test-key", server.URL, "", 50)

	_, err := summarizer.Summarize(context.Background(), "<s>hi</s>")

	req.ErrorIs(err, errors.ErrSummarizer)
}
