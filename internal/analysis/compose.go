package analysis

import "github.com/verte-zerg/tuispeak/internal/model"

const (
	// NoSpeechMessage is returned for empty or whitespace-only transcripts.
	NoSpeechMessage = "No speech detected. Please try speaking again and ensure your microphone is working properly."

	// AnalysisErrorMessage is returned when analysis fails unexpectedly.
	AnalysisErrorMessage = "An error occurred during analysis. Please try again."
)

type commentBand struct {
	min  float64
	text string
}

// Bands are checked top-down; the first band whose minimum is met wins.
var commentBands = []commentBand{
	{min: 90, text: "Excellent work! Your English is very clear and natural. Your pronunciation, grammar, and fluency are all at a high level. Keep practicing to maintain this excellent standard."},
	{min: 80, text: "Great job! You're communicating effectively with good clarity and structure. Focus on the specific areas highlighted for improvement to reach the next level."},
	{min: 70, text: "Good progress! You're developing solid English skills. Continue practicing the suggested improvements, particularly in pronunciation and grammar, to enhance your overall fluency."},
	{min: 60, text: "You're making steady progress! Focus on pronunciation fundamentals and basic grammar structures for clearer communication. Regular practice will help you improve significantly."},
}

const lowestBandComment = "Keep practicing! Focus on basic pronunciation patterns and simple sentence structures. Don't get discouraged - consistent practice will lead to noticeable improvements."

// OverallComment selects the commentary for the unrounded overall mean,
// so 89.7 still reads as the 80 band.
func OverallComment(overall float64) string {
	for _, band := range commentBands {
		if overall >= band.min {
			return band.text
		}
	}
	return lowestBandComment
}

// Compose assembles the feedback record for an analyzed transcript.
func Compose(pronunciation []model.PronunciationFinding, grammar []model.GrammarFinding, vocabulary []model.VocabularyFinding, overall float64) model.Feedback {
	if pronunciation == nil {
		pronunciation = []model.PronunciationFinding{}
	}
	if grammar == nil {
		grammar = []model.GrammarFinding{}
	}
	if vocabulary == nil {
		vocabulary = []model.VocabularyFinding{}
	}
	return model.Feedback{
		Pronunciation: pronunciation,
		Grammar:       grammar,
		Vocabulary:    vocabulary,
		Overall:       OverallComment(overall),
	}
}

// MessageFeedback returns feedback with empty finding lists and a fixed message.
func MessageFeedback(message string) model.Feedback {
	return model.Feedback{
		Pronunciation: []model.PronunciationFinding{},
		Grammar:       []model.GrammarFinding{},
		Vocabulary:    []model.VocabularyFinding{},
		Overall:       message,
	}
}
