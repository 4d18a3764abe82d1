package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountTokens(t *testing.T) {
	tests := []struct {
		name     string
		bodies   []string
		expected int
	}{
		{name: "No message", bodies: nil, expected: 0},
		{name: "Words across messages", bodies: []string{"a b", "c"}, expected: 3},
		{name: "Order does not matter", bodies: []string{"c", "a b"}, expected: 3},
		{name: "Empty body counts once", bodies: []string{""}, expected: 1},
		{name: "Runs of spaces yield empty tokens", bodies: []string{"  "}, expected: 3},
		{name: "Double space between words", bodies: []string{"hello  world"}, expected: 3},
		{name: "Tabs and newlines are not separators", bodies: []string{"a\tb\nc"}, expected: 1},
		{name: "Korean words", bodies: []string{"안녕 하세요 반가워요"}, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, CountTokens(tt.bodies))
		})
	}
}

func TestBuildContext(t *testing.T) {
	req := require.New(t)

	req.Equal("", BuildContext(nil))
	req.Equal("<s>hello</s>", BuildContext([]string{"hello"}))
	req.Equal("<s>first</s> <s>second</s> <s>third</s>", BuildContext([]string{"first", "second", "third"}))
}
