package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "punctuation stripped", in: "  Hello, world!  I'm here... ", want: []string{"hello", "world", "i'm", "here"}},
		{name: "punctuation-only token dropped", in: "-- ok --", want: []string{"ok"}},
		{name: "mixed whitespace", in: "one\ttwo\n\nthree", want: []string{"one", "two", "three"}},
		{name: "empty", in: "   ", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.in))
		})
	}
}

func TestSentencesDropBlankSegmentsAndReindex(t *testing.T) {
	got := Sentences("Hi there.. How are you?!  ...  Fine")
	assert.Equal(t, []Sentence{
		{Index: 0, Text: "Hi there"},
		{Index: 1, Text: "How are you"},
		{Index: 2, Text: "Fine"},
	}, got)
}

func TestTokenizeKeepsDuplicates(t *testing.T) {
	tokens := Tokenize("Good, good. GOOD!")
	assert.Equal(t, []string{"good", "good", "good"}, tokens.Words)
	assert.Len(t, tokens.Sentences, 3)
}
