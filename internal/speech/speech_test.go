package speech

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuispeak/internal/model"
)

func TestDecodeResults_JSONLines(t *testing.T) {
	in := `{"text":"i are","partial":true}
{"text":"I are happy.","partial":false,"confidence":0.9}
{"type":"vad","message":"speech ended"}
{"text":"I saw a apple.","partial":false}
`
	results, err := DecodeResults(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.False(t, results[0].Final)
	assert.True(t, results[1].Final)
	assert.InDelta(t, 0.9, results[1].Confidence, 1e-9)

	assert.Equal(t, "I are happy. I saw a apple.", FinalTranscript(results))
}

func TestDecodeResults_PrettyPrinted(t *testing.T) {
	in := `{
  "index": 0,
  "text": "hello there",
  "timestamp": "2024-01-01T00:00:00Z",
  "partial": false
}
{
  "text": "ignored",
  "partial": true
}`
	results, err := DecodeResults(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "hello there", FinalTranscript(results))
}

func TestDecodeResults_Malformed(t *testing.T) {
	_, err := DecodeResults(strings.NewReader(`{"text":"ok"}` + "\n{broken"))
	assert.Error(t, err)
}

func TestFinalTranscript_Empty(t *testing.T) {
	assert.Equal(t, "", FinalTranscript(nil))
	assert.Equal(t, "", FinalTranscript([]Result{{Text: "  ", Final: true}, {Text: "x"}}))
}

func TestOptionsNormalize(t *testing.T) {
	got := Options{}.Normalize()
	assert.Equal(t, Options{Rate: 0.9, Pitch: 1, Volume: 0.8, Lang: "en-US"}, got)

	got = Options{Rate: 50, Pitch: -1, Volume: 3, Lang: "en-GB"}.Normalize()
	assert.Equal(t, 10.0, got.Rate)
	assert.Equal(t, 0.0, got.Pitch)
	assert.Equal(t, 1.0, got.Volume)
	assert.Equal(t, "en-GB", got.Lang)

	assert.Equal(t, 0.1, Options{Rate: 0.01}.Normalize().Rate)
}

type recordedRun struct {
	name  string
	args  []string
	stdin string
}

func recorder(calls *[]recordedRun, err error) RunFunc {
	return func(_ context.Context, name string, args []string, stdin string) error {
		*calls = append(*calls, recordedRun{name: name, args: args, stdin: stdin})
		return err
	}
}

func TestCommandSpeaker_Espeak(t *testing.T) {
	var calls []recordedRun
	s := NewCommandSpeaker(model.VoiceConfig{}).WithRunner(recorder(&calls, nil))

	require.NoError(t, s.Speak(context.Background(), " Think about three things ", Options{}))
	require.Len(t, calls, 1)
	assert.Equal(t, "espeak-ng", calls[0].name)
	assert.Equal(t, []string{"-v", "en-us", "-s", "158", "-p", "50", "-a", "160", "--", "Think about three things"}, calls[0].args)
	assert.Empty(t, calls[0].stdin)
}

func TestCommandSpeaker_ConfiguredVoiceAndOverrides(t *testing.T) {
	var calls []recordedRun
	s := NewCommandSpeaker(model.VoiceConfig{Command: "espeak --punct", Voice: "en-gb", Rate: 1.2}).
		WithRunner(recorder(&calls, nil))

	require.NoError(t, s.Speak(context.Background(), "world", Options{Rate: 0.8}))
	require.Len(t, calls, 1)
	assert.Equal(t, "espeak", calls[0].name)
	assert.Equal(t, []string{"--punct", "-v", "en-gb", "-s", "140", "-p", "50", "-a", "160", "--", "world"}, calls[0].args)
}

func TestCommandSpeaker_GenericCommandUsesStdin(t *testing.T) {
	var calls []recordedRun
	s := NewCommandSpeaker(model.VoiceConfig{Command: "/usr/local/bin/piper-say"}).WithRunner(recorder(&calls, nil))

	require.NoError(t, s.Speak(context.Background(), "hello", Options{}))
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].args)
	assert.Equal(t, "hello", calls[0].stdin)
}

func TestCommandSpeaker_SkipsEmptyTextAndWrapsErrors(t *testing.T) {
	var calls []recordedRun
	boom := errors.New("boom")
	s := NewCommandSpeaker(model.VoiceConfig{Command: "say"}).WithRunner(recorder(&calls, boom))

	require.NoError(t, s.Speak(context.Background(), "   ", Options{}))
	assert.Empty(t, calls)

	err := s.Speak(context.Background(), "hi", Options{})
	assert.ErrorIs(t, err, boom)
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-r", "158", "--", "hi"}, calls[0].args)
}
