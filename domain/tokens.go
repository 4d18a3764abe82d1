package domain

import "strings"

// CountTokens returns the conversation length used by the summary trigger.
// Each body contributes the number of pieces produced by splitting on a single
// space, so runs of spaces yield empty tokens that are counted too.
// An empty body still counts as one token.
func CountTokens(bodies []string) int {
	count := 0
	for _, body := range bodies {
		count += len(strings.Split(body, " "))
	}
	return count
}

// BuildContext wraps each body in <s>...</s> and joins them oldest first.
func BuildContext(bodies []string) string {
	if len(bodies) == 0 {
		return ""
	}
	return "<s>" + strings.Join(bodies, "</s> <s>") + "</s>"
}
