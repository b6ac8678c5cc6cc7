package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabulary_FirstOccurrenceOnly(t *testing.T) {
	a := NewVocabularyAnalyzer(DefaultSynonyms())
	findings := a.Analyze("Good food is very good, VERY nice. Good!")
	require.Len(t, findings, 3)

	assert.Equal(t, "good", findings[0].Word)
	assert.Equal(t, "very", findings[1].Word)
	assert.Equal(t, "nice", findings[2].Word)
	assert.Equal(t, []string{"excellent", "outstanding", "remarkable", "superb"}, findings[0].Alternatives)
	assert.Contains(t, findings[0].Context, `"good"`)
}

func TestVocabulary_ShortWordsNeverFire(t *testing.T) {
	a := NewVocabularyAnalyzer(DefaultSynonyms())
	assert.Empty(t, a.Analyze("a bad big day"))
}

func TestVocabulary_SplitsOnNonWordCharacters(t *testing.T) {
	a := NewVocabularyAnalyzer(DefaultSynonyms())
	findings := a.Analyze("she said-went home")
	require.Len(t, findings, 2)
	assert.Equal(t, "said", findings[0].Word)
	assert.Equal(t, "went", findings[1].Word)
}

func TestVocabulary_TableIsCopied(t *testing.T) {
	table := map[string][]string{"Great": {"superb"}}
	a := NewVocabularyAnalyzer(table)
	table["Great"][0] = "changed"

	findings := a.Analyze("great")
	require.Len(t, findings, 1)
	assert.Equal(t, []string{"superb"}, findings[0].Alternatives)
}
