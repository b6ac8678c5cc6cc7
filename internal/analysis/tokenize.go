// Package analysis scores spoken-English transcripts.
//
// The package is pure: every function is deterministic given its inputs and
// an Engine holds no mutable state after construction, so it can be shared
// between goroutines without locking.
package analysis

import (
	"regexp"
	"strings"
	"unicode"
)

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// Sentence is a non-empty sentence and its position among non-empty sentences.
type Sentence struct {
	Index int
	Text  string
}

// Tokens is the tokenized form of a transcript.
type Tokens struct {
	Words     []string
	Sentences []Sentence
}

// Tokenize splits a transcript into words and sentences.
func Tokenize(transcript string) Tokens {
	return Tokens{
		Words:     Words(transcript),
		Sentences: Sentences(transcript),
	}
}

// Words returns lowercase word tokens with edge punctuation stripped.
// Tokens that are empty after stripping are dropped.
func Words(transcript string) []string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(transcript)))
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.TrimFunc(field, isEdgePunct)
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	return words
}

// Sentences splits on runs of terminal punctuation and drops blank segments.
func Sentences(transcript string) []Sentence {
	parts := sentenceBreak.Split(transcript, -1)
	sentences := make([]Sentence, 0, len(parts))
	for _, part := range parts {
		text := strings.TrimSpace(part)
		if text == "" {
			continue
		}
		sentences = append(sentences, Sentence{Index: len(sentences), Text: text})
	}
	return sentences
}

func isEdgePunct(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}
