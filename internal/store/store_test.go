package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuispeak/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "tuispeak.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleSession(uid, user string, at time.Time, overall int) model.PracticeSession {
	return model.PracticeSession{
		ID:           uid,
		UserID:       user,
		Transcript:   "I are happy",
		OriginalText: "I am happy",
		Scores:       model.Scores{Pronunciation: 88, Grammar: 85, Fluency: 80, Overall: overall},
		Feedback: model.Feedback{
			Pronunciation: []model.PronunciationFinding{{Word: "are", Score: 78, Suggestion: "s", PhoneticCorrection: "/a[r]e/"}},
			Grammar:       []model.GrammarFinding{{Error: "Subject-verb disagreement", Correction: "I am happy", SentenceIndex: 0}},
			Vocabulary:    []model.VocabularyFinding{},
			Overall:       "Great job!",
		},
		XPGained:        overall * 2,
		DurationSeconds: 7,
		Timestamp:       at,
	}
}

func TestInsertAndGetSession(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	want := sampleSession("0f8e7a6b-1111-4222-8333-944455556666", "alice", at, 84)

	id, err := st.InsertSession(ctx, want, []model.SoundStats{{Sound: "r", Matched: 1, Flagged: 1, ScoreSum: 78}}, nil)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := st.GetSession(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	byPrefix, err := st.GetSession(ctx, "0f8e7a")
	require.NoError(t, err)
	assert.Equal(t, want.ID, byPrefix.ID)
}

func TestGetSessionErrors(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := st.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = st.InsertSession(ctx, sampleSession("abc-1", "", at, 80), nil, nil)
	require.NoError(t, err)
	_, err = st.InsertSession(ctx, sampleSession("abc-2", "", at, 80), nil, nil)
	require.NoError(t, err)

	_, err = st.GetSession(ctx, "abc")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = st.InsertSession(ctx, sampleSession("abc-1", "", at, 80), nil, nil)
	assert.Error(t, err)
}

func TestListSessionsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	users := []string{"alice", "bob", "alice"}
	for i, user := range users {
		ps := sampleSession("s"+string(rune('a'+i)), user, base.Add(time.Duration(i)*time.Hour), 70+i)
		_, err := st.InsertSession(ctx, ps, nil, nil)
		require.NoError(t, err)
	}

	all, err := st.ListSessions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "sa", all[0].UID)
	assert.Equal(t, 72, all[2].Scores.Overall)
	assert.Equal(t, 144, all[2].XP)

	alice, err := st.ListSessions(ctx, model.StatsConfig{User: "alice"})
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assert.Equal(t, "sc", alice[1].UID)

	since := base.Add(90 * time.Minute)
	recent, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "sc", recent[0].UID)
}

func TestSoundAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var ids []int64
	for i := 0; i < 3; i++ {
		sounds := []model.SoundStats{
			{Sound: "r", Matched: 2, Flagged: 1, ScoreSum: 160},
			{Sound: "th", Matched: 1, Flagged: i % 2, ScoreSum: 75},
		}
		id, err := st.InsertSession(ctx, sampleSession("u"+string(rune('0'+i)), "alice", base.Add(time.Duration(i)*time.Minute), 80), sounds, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	aggs, err := st.ListSoundAggregatesForSessions(ctx, ids)
	require.NoError(t, err)
	bySound := map[string]model.SoundAggregate{}
	for _, a := range aggs {
		bySound[a.Sound] = a
	}
	assert.Equal(t, model.SoundAggregate{Sound: "r", Matched: 6, Flagged: 3, ScoreSum: 480}, bySound["r"])
	assert.Equal(t, model.SoundAggregate{Sound: "th", Matched: 3, Flagged: 1, ScoreSum: 225}, bySound["th"])

	weak, err := st.GetWeakSounds(ctx, 1, "alice")
	require.NoError(t, err)
	require.Len(t, weak, 2)
	for _, a := range weak {
		if a.Sound == "th" {
			assert.Equal(t, 0, a.Flagged)
		}
	}

	none, err := st.GetWeakSounds(ctx, 0, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	perSession, err := st.ListSoundStatsForSessions(ctx, ids, []string{"th"})
	require.NoError(t, err)
	require.Len(t, perSession, 3)
	assert.Equal(t, 1, perSession[ids[1]]["th"].Flagged)
	_, hasR := perSession[ids[1]]["r"]
	assert.False(t, hasR)
}

func TestListWeakWordsGroupsByPhoneticKey(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	id1, err := st.InsertSession(ctx, sampleSession("w1", "", at, 80), nil, []model.WordStats{
		{Word: "there", PhoneticKey: "0R", Score: 70},
		{Word: "world", PhoneticKey: "ARLT", Score: 74},
	})
	require.NoError(t, err)
	id2, err := st.InsertSession(ctx, sampleSession("w2", "", at.Add(time.Minute), 80), nil, []model.WordStats{
		{Word: "their", PhoneticKey: "0R", Score: 72},
	})
	require.NoError(t, err)

	words, err := st.ListWeakWords(ctx, []int64{id1, id2}, 0)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "0R", words[0].PhoneticKey)
	assert.Equal(t, []string{"their", "there"}, words[0].Words)
	assert.Equal(t, 2, words[0].Count)
	assert.Equal(t, int64(142), words[0].ScoreSum)

	limited, err := st.ListWeakWords(ctx, []int64{id1, id2}, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
