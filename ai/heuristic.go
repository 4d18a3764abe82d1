package ai

import (
	"chat-relay/errors"
	"context"
	"sort"
	"strings"
	"unicode"
)

// HeuristicSummarizer is an offline extractive summarizer.
// It keeps the utterances whose words are the most frequent in the conversation,
// in their original order, until the word budget is spent. Utterances scoring below
// the conversation average are dropped, except the best one.
type HeuristicSummarizer struct {
	maxWords int
}

func NewHeuristicSummarizer(maxWords int) *HeuristicSummarizer {
	return &HeuristicSummarizer{maxWords: maxWords}
}

type utterance struct {
	position int
	text     string
	words    []string
	score    float64
}

func (h *HeuristicSummarizer) Summarize(ctx context.Context, contextText string) (string, error) {
	utterances := splitUtterances(contextText)
	if len(utterances) == 0 {
		return "", errors.ErrEmptySummary
	}

	frequencies := make(map[string]int)
	var mean float64
	for _, u := range utterances {
		for _, w := range u.words {
			frequencies[w]++
		}
	}
	for i := range utterances {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		u := &utterances[i]
		for _, w := range u.words {
			u.score += float64(frequencies[w])
		}
		u.score /= float64(len(u.words))
		mean += u.score / float64(len(utterances))
	}

	ranked := make([]utterance, len(utterances))
	copy(ranked, utterances)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var kept []utterance
	budget := h.maxWords
	for _, u := range ranked {
		if len(kept) > 0 && (u.score < mean || len(u.words) > budget) {
			continue
		}
		kept = append(kept, u)
		budget -= len(u.words)
		if budget <= 0 {
			break
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].position < kept[j].position })

	texts := make([]string, 0, len(kept))
	for _, u := range kept {
		texts = append(texts, u.text)
	}
	return strings.Join(texts, " "), nil
}

// splitUtterances undoes the <s>...</s> framing, skipping empty utterances.
func splitUtterances(contextText string) []utterance {
	var utterances []utterance
	for _, part := range strings.Split(contextText, "</s>") {
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "<s>"))
		if text == "" {
			continue
		}
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len(words) == 0 {
			continue
		}
		utterances = append(utterances, utterance{position: len(utterances), text: text, words: words})
	}
	return utterances
}
