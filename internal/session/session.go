// Package session turns analyzed transcripts into stored practice sessions.
package session

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/google/uuid"

	"github.com/verte-zerg/tuispeak/internal/analysis"
	"github.com/verte-zerg/tuispeak/internal/model"
)

// XPPerPoint is the experience awarded per overall score point.
const XPPerPoint = 2.0

// XPPerLevel is the experience needed to advance one level.
const XPPerLevel = 1000

var (
	// ErrNoSpeech is returned for empty or whitespace-only transcripts.
	ErrNoSpeech = errors.New("no speech detected")
	// ErrAnalysisFailed is returned when analysis fell back to the error message.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// Input is everything needed to record one attempt.
type Input struct {
	Transcript   string
	OriginalText string
	Feedback     model.Feedback
	Status       analysis.Status
	UserID       string
	Duration     time.Duration
}

// FromResult builds an Input from an engine result.
func FromResult(transcript string, res analysis.Result) Input {
	return Input{
		Transcript:   transcript,
		OriginalText: res.OriginalText,
		Feedback:     res.Feedback,
		Status:       res.Status,
	}
}

// Builder assembles sessions. Zero values use time.Now and random UUIDs.
type Builder struct {
	Now   func() time.Time
	NewID func() string
}

// Build validates the input and derives scores and XP from the feedback.
func (b Builder) Build(in Input) (model.PracticeSession, error) {
	transcript := strings.TrimSpace(in.Transcript)
	if transcript == "" || in.Status == analysis.StatusNoSpeech {
		return model.PracticeSession{}, ErrNoSpeech
	}
	if in.Status == analysis.StatusFault {
		return model.PracticeSession{}, ErrAnalysisFailed
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	newID := uuid.NewString
	if b.NewID != nil {
		newID = b.NewID
	}

	scores := analysis.Aggregate(in.Feedback.Pronunciation, in.Feedback.Grammar, len(analysis.Words(transcript)))
	duration := in.Duration
	if duration < 0 {
		duration = 0
	}
	return model.PracticeSession{
		ID:              newID(),
		UserID:          in.UserID,
		Transcript:      transcript,
		OriginalText:    in.OriginalText,
		Scores:          scores,
		Feedback:        in.Feedback,
		XPGained:        XPForScore(scores.Overall),
		DurationSeconds: int(duration.Round(time.Second) / time.Second),
		Timestamp:       now().UTC(),
	}, nil
}

// XPForScore converts an overall score into experience points.
func XPForScore(overall int) int {
	return int(math.Round(float64(overall) * XPPerPoint))
}

// Level returns the level reached with totalXP, starting at 1.
func Level(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// Breakdown counts how each sound rule fared across the pronunciation
// findings and lists the flagged words with their phonetic keys.
// Sounds that never matched are omitted; order follows rules.
func Breakdown(rules []analysis.SoundRule, fb model.Feedback) ([]model.SoundStats, []model.WordStats) {
	bySound := make(map[string]*model.SoundStats, len(rules))
	order := make([]string, 0, len(rules))
	for _, rule := range rules {
		if _, ok := bySound[rule.Sound]; ok || rule.Sound == "" {
			continue
		}
		bySound[rule.Sound] = &model.SoundStats{Sound: rule.Sound}
		order = append(order, rule.Sound)
	}
	var words []model.WordStats

	for _, finding := range fb.Pronunciation {
		// Flagging follows the unrounded score, which only the correction records.
		flagged := finding.PhoneticCorrection != ""
		for _, rule := range rules {
			if rule.Sound == "" || !rule.Matches(finding.Word) {
				continue
			}
			st := bySound[rule.Sound]
			st.Matched++
			st.ScoreSum += int64(finding.Score)
			if flagged {
				st.Flagged++
			}
		}
		if flagged {
			words = append(words, model.WordStats{
				Word:        finding.Word,
				PhoneticKey: PhoneticKey(finding.Word),
				Score:       finding.Score,
			})
		}
	}

	sounds := make([]model.SoundStats, 0, len(order))
	for _, sound := range order {
		if st := bySound[sound]; st.Matched > 0 {
			sounds = append(sounds, *st)
		}
	}
	return sounds, words
}

// PhoneticKey returns the primary Double Metaphone code of word, so that
// words that sound alike share a key. Words without a code key to themselves.
func PhoneticKey(word string) string {
	primary, secondary := matchr.DoubleMetaphone(word)
	if primary != "" {
		return primary
	}
	if secondary != "" {
		return secondary
	}
	return strings.ToLower(word)
}
