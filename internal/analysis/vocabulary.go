package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/verte-zerg/tuispeak/internal/model"
)

const minVocabularyWordLen = 4

var nonWord = regexp.MustCompile(`\W+`)

// DefaultSynonyms maps plain words to stronger alternatives.
// "bad" and "big" are shorter than the minimum token length and never fire.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"good":  {"excellent", "outstanding", "remarkable", "superb"},
		"bad":   {"terrible", "awful", "dreadful", "poor"},
		"big":   {"enormous", "massive", "gigantic", "substantial"},
		"small": {"tiny", "minuscule", "compact", "petite"},
		"nice":  {"pleasant", "delightful", "charming", "lovely"},
		"very":  {"extremely", "incredibly", "remarkably", "exceptionally"},
		"said":  {"stated", "mentioned", "declared", "expressed"},
		"went":  {"traveled", "journeyed", "proceeded", "departed"},
	}
}

// VocabularyAnalyzer suggests alternatives for overused words.
type VocabularyAnalyzer struct {
	synonyms map[string][]string
}

// NewVocabularyAnalyzer builds an analyzer over a synonym table.
func NewVocabularyAnalyzer(synonyms map[string][]string) *VocabularyAnalyzer {
	table := make(map[string][]string, len(synonyms))
	for word, alts := range synonyms {
		if len(alts) == 0 {
			continue
		}
		table[strings.ToLower(word)] = append([]string(nil), alts...)
	}
	return &VocabularyAnalyzer{synonyms: table}
}

// Analyze returns at most one finding per distinct word, in first-seen order.
func (a *VocabularyAnalyzer) Analyze(transcript string) []model.VocabularyFinding {
	findings := []model.VocabularyFinding{}
	seen := map[string]struct{}{}
	for _, word := range nonWord.Split(strings.ToLower(transcript), -1) {
		if len(word) < minVocabularyWordLen {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		alts, ok := a.synonyms[word]
		if !ok {
			continue
		}
		seen[word] = struct{}{}
		findings = append(findings, model.VocabularyFinding{
			Word:         word,
			Alternatives: append([]string(nil), alts...),
			Context:      fmt.Sprintf("Consider using more specific vocabulary instead of %q to make your speech more engaging", word),
		})
	}
	return findings
}
