package speech

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/tuispeak/internal/model"
)

const (
	// DefaultRate is the speaking rate used when none is set.
	DefaultRate = 0.9
	// SlowRate is used when demonstrating a single word.
	SlowRate      = 0.7
	DefaultPitch  = 1.0
	DefaultVolume = 0.8
	DefaultLang   = "en-US"
	// DefaultCommand is the synthesizer run by CommandSpeaker.
	DefaultCommand = "espeak-ng"

	minRate, maxRate     = 0.1, 10.0
	minPitch, maxPitch   = 0.0, 2.0
	minVolume, maxVolume = 0.0, 1.0

	espeakWordsPerMinute = 175
	espeakMidPitch       = 50
	espeakMaxAmplitude   = 200
	sayWordsPerMinute    = 175
)

// Options tunes one utterance. Zero fields take the defaults.
type Options struct {
	Rate   float64
	Pitch  float64
	Volume float64
	Voice  string
	Lang   string
}

// Normalize fills defaults and clamps every field into its valid range.
func (o Options) Normalize() Options {
	o.Rate = clampOr(o.Rate, DefaultRate, minRate, maxRate)
	o.Pitch = clampOr(o.Pitch, DefaultPitch, minPitch, maxPitch)
	o.Volume = clampOr(o.Volume, DefaultVolume, minVolume, maxVolume)
	if strings.TrimSpace(o.Lang) == "" {
		o.Lang = DefaultLang
	}
	return o
}

// OptionsFromVoice converts the configured voice into utterance options.
func OptionsFromVoice(v model.VoiceConfig) Options {
	return Options{
		Rate:   v.Rate,
		Pitch:  v.Pitch,
		Volume: v.Volume,
		Voice:  v.Voice,
		Lang:   v.Lang,
	}.Normalize()
}

func clampOr(v, def, lo, hi float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}

// Speaker reads text aloud.
type Speaker interface {
	Speak(ctx context.Context, text string, opts Options) error
}

// RunFunc runs an external command with stdin.
type RunFunc func(ctx context.Context, name string, args []string, stdin string) error

// CommandSpeaker speaks through an external synthesizer program.
type CommandSpeaker struct {
	command string
	args    []string
	base    Options
	run     RunFunc
}

// NewCommandSpeaker builds a speaker from voice configuration. The command
// may carry extra arguments, e.g. "espeak-ng --punct".
func NewCommandSpeaker(v model.VoiceConfig) *CommandSpeaker {
	fields := strings.Fields(v.Command)
	if len(fields) == 0 {
		fields = []string{DefaultCommand}
	}
	return &CommandSpeaker{
		command: fields[0],
		args:    fields[1:],
		base:    OptionsFromVoice(v),
		run:     runCommand,
	}
}

// WithRunner replaces the process runner.
func (s *CommandSpeaker) WithRunner(run RunFunc) *CommandSpeaker {
	s.run = run
	return s
}

// Speak implements Speaker. Zero option fields fall back to the configured voice.
func (s *CommandSpeaker) Speak(ctx context.Context, text string, opts Options) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	opts = s.merge(opts)
	args, stdin := s.Args(text, opts)
	if err := s.run(ctx, s.command, args, stdin); err != nil {
		return fmt.Errorf("failed to run %s: %w", s.command, err)
	}
	return nil
}

func (s *CommandSpeaker) merge(opts Options) Options {
	if opts.Rate == 0 {
		opts.Rate = s.base.Rate
	}
	if opts.Pitch == 0 {
		opts.Pitch = s.base.Pitch
	}
	if opts.Volume == 0 {
		opts.Volume = s.base.Volume
	}
	if opts.Voice == "" {
		opts.Voice = s.base.Voice
	}
	if opts.Lang == "" {
		opts.Lang = s.base.Lang
	}
	return opts.Normalize()
}

// Args returns the command-line arguments and stdin for an utterance.
// espeak and macOS say get native flags; other programs read text on stdin.
func (s *CommandSpeaker) Args(text string, opts Options) ([]string, string) {
	args := append([]string(nil), s.args...)
	switch filepath.Base(s.command) {
	case "espeak-ng", "espeak":
		voice := opts.Voice
		if voice == "" {
			voice = strings.ToLower(opts.Lang)
		}
		args = append(args,
			"-v", voice,
			"-s", strconv.Itoa(int(math.Round(espeakWordsPerMinute*opts.Rate))),
			"-p", strconv.Itoa(min(99, int(math.Round(espeakMidPitch*opts.Pitch)))),
			"-a", strconv.Itoa(int(math.Round(espeakMaxAmplitude*opts.Volume))),
			"--", text,
		)
		return args, ""
	case "say":
		if opts.Voice != "" {
			args = append(args, "-v", opts.Voice)
		}
		args = append(args, "-r", strconv.Itoa(int(math.Round(sayWordsPerMinute*opts.Rate))), "--", text)
		return args, ""
	default:
		return args, text
	}
}

func runCommand(ctx context.Context, name string, args []string, stdin string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
