package ai

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeuristicSummarizer_Keeps_Central_Utterances_In_Order(t *testing.T) {
	req := require.New(t)
	summarizer := NewHeuristicSummarizer(10)
	contextText := domain.BuildContext([]string{
		"lunch",
		"badger is a key value store",
		"ok",
		"the key value store keeps badger fast",
		"lol",
	})

	summary, err := summarizer.Summarize(context.Background(), contextText)

	req.NoError(err)
	req.Equal("badger is a key value store", summary)
}

func TestHeuristicSummarizer_Word_Budget(t *testing.T) {
	req := require.New(t)
	summarizer := NewHeuristicSummarizer(4)
	contextText := domain.BuildContext([]string{"go go go", "go rust", "python"})

	summary, err := summarizer.Summarize(context.Background(), contextText)

	// go go go scores 4, go rust 2.5 but exceeds the remaining budget, python 1
	req.NoError(err)
	req.Equal("go go go", summary)
}

func TestHeuristicSummarizer_Empty_Conversation(t *testing.T) {
	req := require.New(t)
	summarizer := NewHeuristicSummarizer(10)

	_, err := summarizer.Summarize(context.Background(), domain.BuildContext(nil))
	req.ErrorIs(err, errors.ErrEmptySummary)

	_, err = summarizer.Summarize(context.Background(), "<s> </s> <s>!!</s>")
	req.ErrorIs(err, errors.ErrEmptySummary)
}
