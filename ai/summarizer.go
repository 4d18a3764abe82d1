// Package ai turns a conversation into a short summary.
package ai

import (
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = "gpt-4o-mini"

const systemPrompt = `You summarize group chat conversations.
Each utterance is wrapped between <s> and </s>.
Write a summary of at most %d words, in the language the participants use.
Answer with the summary only.`

// OpenAISummarizer summarizes through any OpenAI compatible chat completion API.
type OpenAISummarizer struct {
	client   openai.Client
	model    string
	maxWords int
	log      *slog.Logger
}

func NewOpenAISummarizer(log *slog.Logger, apiKey, baseURL, model string, maxWords int) *OpenAISummarizer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = defaultModel
	}
	return &OpenAISummarizer{
		client:   openai.NewClient(opts...),
		model:    model,
		maxWords: maxWords,
		log:      log,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, contextText string) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(systemPrompt, s.maxWords)),
			openai.UserMessage(contextText),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrSummarizer, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.ErrEmptySummary
	}
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", errors.ErrEmptySummary
	}
	s.log.Debug("Conversation summarized", "model", s.model, "total_tokens", resp.Usage.TotalTokens)
	return summary, nil
}
