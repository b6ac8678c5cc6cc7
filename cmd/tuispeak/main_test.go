package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuispeak/internal/analysis"
	"github.com/verte-zerg/tuispeak/internal/config"
	"github.com/verte-zerg/tuispeak/internal/generator"
	"github.com/verte-zerg/tuispeak/internal/lesson"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/speech"
)

func TestValidateConfig(t *testing.T) {
	require.NoError(t, validateConfig(model.Config{WeakTop: 3, WeakFactor: 2, WeakWindow: 20}))
	assert.EqualError(t, validateConfig(model.Config{WeakTop: -1}), "--weak-top must be >= 0")
	assert.EqualError(t, validateConfig(model.Config{WeakFactor: -1}), "--weak-factor must be >= 0")
	assert.EqualError(t, validateConfig(model.Config{WeakWindow: -1}), "--weak-window must be >= 0")
}

func TestApplyConfigFlagWins(t *testing.T) {
	cmd := &cobra.Command{}
	target := 1
	other := 1
	cmd.Flags().IntVar(&target, "weak-top", 1, "")
	cmd.Flags().IntVar(&other, "weak-window", 1, "")
	require.NoError(t, cmd.Flags().Set("weak-top", "7"))

	fileValue := 4
	applyIntConfig(cmd, "weak-top", &target, &fileValue)
	applyIntConfig(cmd, "weak-window", &other, &fileValue)
	applyIntConfig(cmd, "weak-window", &other, nil)
	assert.Equal(t, 7, target)
	assert.Equal(t, 4, other)
}

func TestVoiceConfigDefaults(t *testing.T) {
	v := voiceConfig(config.SpeechConfig{})
	assert.Equal(t, speech.DefaultCommand, v.Command)
	assert.Equal(t, speech.DefaultLang, v.Lang)

	rate := 1.5
	voice := "en-gb"
	blank := " "
	v = voiceConfig(config.SpeechConfig{Rate: &rate, Voice: &voice, Command: &blank})
	assert.Equal(t, 1.5, v.Rate)
	assert.Equal(t, "en-gb", v.Voice)
	assert.Equal(t, speech.DefaultCommand, v.Command)
}

func TestBuildStatsConfig(t *testing.T) {
	cfg, err := buildStatsConfig("ana", "2026-03-01", 10, 5, "th,r")
	require.NoError(t, err)
	require.NotNil(t, cfg.Since)
	assert.Equal(t, "2026-03-01", cfg.Since.Format("2006-01-02"))
	assert.Equal(t, "ana", cfg.User)

	_, err = buildStatsConfig("", "yesterday", 0, 5, "")
	assert.Error(t, err)
	_, err = buildStatsConfig("", "", -1, 5, "")
	assert.EqualError(t, err, "--last must be >= 0")
	_, err = buildStatsConfig("", "", 0, 0, "")
	assert.EqualError(t, err, "--curve-window must be >= 1")
}

func TestReadTranscriptSources(t *testing.T) {
	got, err := readTranscript(strings.NewReader(""), []string{"i", "are", "ready"}, false, "")
	require.NoError(t, err)
	assert.Equal(t, "i are ready", got)

	got, err = readTranscript(strings.NewReader("from stdin\n"), nil, true, "")
	require.NoError(t, err)
	assert.Equal(t, "from stdin\n", got)

	stt := `{"text": "hello", "partial": true}
{"text": "hello world", "partial": false}
{"type": "status", "message": "listening"}
{"text": "again", "partial": false}`
	got, err = readTranscript(strings.NewReader(stt), nil, false, "-")
	require.NoError(t, err)
	assert.Equal(t, "hello world again", got)

	_, err = readTranscript(strings.NewReader(""), []string{"x"}, true, "")
	assert.Error(t, err)
}

func TestNewEngineJitterStaysInRange(t *testing.T) {
	engine := newEngine(generator.NewWithSeed(1), true, nil)
	res := engine.Analyze("cat dog", "")
	for _, p := range res.Feedback.Pronunciation {
		assert.GreaterOrEqual(t, p.Score, 85)
		assert.LessOrEqual(t, p.Score, 95)
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"text", "json", "yaml"} {
		assert.NoError(t, validateFormat(f))
	}
	assert.Error(t, validateFormat("xml"))
}

func analyzeFor(t *testing.T, transcript string) analyzeOutput {
	t.Helper()
	engine := analysis.New(analysis.WithBaseScorer(analysis.BaseScorerFunc(func(string) float64 { return 85 })))
	res := engine.Analyze(transcript, "")
	return analyzeOutput{Status: res.Status.String(), Scores: res.Scores, Feedback: res.Feedback}
}

func TestWriteAnalyzeOutputText(t *testing.T) {
	out := analyzeFor(t, "I are going to the world")
	var buf bytes.Buffer
	require.NoError(t, writeAnalyzeOutput(&buf, formatText, out))
	text := buf.String()
	assert.Contains(t, text, "Overall ")
	assert.Contains(t, text, "Grammar\n  [sentence 1] Subject-verb disagreement")
	assert.Contains(t, text, "Pronunciation\n")
	assert.Contains(t, text, "/wor[l]d/")
}

func TestWriteAnalyzeOutputNoSpeech(t *testing.T) {
	out := analyzeFor(t, "   ")
	var buf bytes.Buffer
	require.NoError(t, writeAnalyzeOutput(&buf, formatText, out))
	assert.Equal(t, analysis.NoSpeechMessage+"\n", buf.String())
}

func TestWriteAnalyzeOutputStructured(t *testing.T) {
	out := analyzeFor(t, "This is a very unique idea.")

	var buf bytes.Buffer
	require.NoError(t, writeAnalyzeOutput(&buf, formatJSON, out))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "ok", decoded["status"])
	fb := decoded["feedback"].(map[string]any)
	assert.Len(t, fb["grammar"], 1)

	buf.Reset()
	require.NoError(t, writeAnalyzeOutput(&buf, formatYAML, out))
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &y))
	assert.Equal(t, "ok", y["status"])
	assert.Contains(t, buf.String(), "sentence_index: 0")
}

func TestWriteLessons(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLessons(&buf, []lesson.Lesson{
		{Name: "daily", Title: "Daily", Prompts: []string{"a", "b"}},
		{Name: "mine", Title: "Mine", Prompts: []string{"c"}, Path: "/tmp/mine.txt"},
	}))
	assert.Equal(t, "daily\t2 prompts\tDaily\tbuiltin\nmine\t1 prompts\tMine\t/tmp/mine.txt\n", buf.String())

	buf.Reset()
	require.NoError(t, writeLessons(&buf, nil))
	assert.Equal(t, "No lessons found.\n", buf.String())
}

func TestSplitSounds(t *testing.T) {
	assert.Equal(t, []string{"th", "r"}, splitSounds(" TH, ,r"))
	assert.Nil(t, splitSounds(""))
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	tmpl := defaultConfigTemplate()
	assert.Contains(t, tmpl, "[practice]")
	assert.Contains(t, tmpl, "[speech]")
	assert.Contains(t, tmpl, "[stats]")
	assert.Contains(t, tmpl, "espeak-ng")
}
