package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuispeak/internal/analysis"
	"github.com/verte-zerg/tuispeak/internal/config"
	"github.com/verte-zerg/tuispeak/internal/generator"
	"github.com/verte-zerg/tuispeak/internal/lesson"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/session"
	"github.com/verte-zerg/tuispeak/internal/stats"
)

var (
	analyzeStdin    bool
	analyzeSTT      string
	analyzeOriginal string
	analyzeLesson   string
	analyzePrompt   int
	analyzeFormat   string
	analyzeSave     bool
	analyzeUser     string
	analyzeDuration time.Duration
	analyzeJitter   bool

	showFormat string

	historyUser  string
	historySince string
	historyLast  int
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyze a transcript and print feedback",
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().BoolVar(&analyzeStdin, "stdin", false, "read the transcript from stdin")
	cmd.Flags().StringVar(&analyzeSTT, "stt", "", "read recognizer JSON results from a file ('-' for stdin)")
	cmd.Flags().StringVar(&analyzeOriginal, "original", "", "text the speaker was asked to read")
	cmd.Flags().StringVar(&analyzeLesson, "lesson", "", "take the original text from a lesson prompt")
	cmd.Flags().IntVar(&analyzePrompt, "prompt", 1, "prompt number within --lesson (1-based)")
	cmd.Flags().StringVar(&analyzeFormat, "format", formatText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&analyzeSave, "save", false, "store the session")
	cmd.Flags().StringVar(&analyzeUser, "user", "", "user id recorded with --save")
	cmd.Flags().DurationVar(&analyzeDuration, "duration", 0, "recording duration recorded with --save")
	cmd.Flags().BoolVar(&analyzeJitter, "jitter", false, "randomize base pronunciation scores")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	if err := validateFormat(analyzeFormat); err != nil {
		return err
	}
	if analyzeDuration < 0 {
		return fmt.Errorf("--duration must be >= 0")
	}
	transcript, err := readTranscript(cmd.InOrStdin(), args, analyzeStdin, analyzeSTT)
	if err != nil {
		return err
	}
	original, err := resolveOriginal(analyzeOriginal, analyzeLesson, analyzePrompt)
	if err != nil {
		return err
	}

	engine := newEngine(generator.New(), analyzeJitter, newStderrLogger())
	res := engine.Analyze(transcript, original)
	out := analyzeOutput{
		Status:   res.Status.String(),
		Scores:   res.Scores,
		Feedback: res.Feedback,
		Original: res.OriginalText,
	}

	if analyzeSave {
		ps, err := saveSession(cmd.Context(), engine, transcript, res, analyzeUser, analyzeDuration)
		switch {
		case errors.Is(err, session.ErrNoSpeech), errors.Is(err, session.ErrAnalysisFailed):
			logErrf("session not saved: %v\n", err)
		case err != nil:
			return err
		default:
			out.SessionID = ps.ID
			out.XPGained = ps.XPGained
		}
	}
	return writeAnalyzeOutput(cmd.OutOrStdout(), analyzeFormat, out)
}

// readTranscript picks the transcript source: recognizer output, stdin or args.
func readTranscript(stdin io.Reader, args []string, fromStdin bool, sttPath string) (string, error) {
	sources := 0
	for _, set := range []bool{len(args) > 0, fromStdin, sttPath != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return "", fmt.Errorf("use only one of text arguments, --stdin or --stt")
	}

	switch {
	case sttPath != "":
		r := stdin
		if sttPath != "-" {
			file, err := os.Open(sttPath)
			if err != nil {
				return "", fmt.Errorf("failed to open recognizer output: %w", err)
			}
			defer func() {
				if cerr := file.Close(); cerr != nil {
					// Best-effort close for read-only input.
					_ = cerr
				}
			}()
			r = file
		}
		return speechTranscript(r)
	case fromStdin:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	default:
		return strings.Join(args, " "), nil
	}
}

func resolveOriginal(original, lessonName string, prompt int) (string, error) {
	if original != "" || lessonName == "" {
		return original, nil
	}
	lessons, err := lesson.Resolve(config.DefaultLessonDir(), lessonName)
	if err != nil {
		return "", fmt.Errorf("failed to load lessons: %w", err)
	}
	prompts := lesson.Prompts(lessons)
	if prompt < 1 || prompt > len(prompts) {
		return "", fmt.Errorf("--prompt must be between 1 and %d", len(prompts))
	}
	return prompts[prompt-1], nil
}

func saveSession(ctx context.Context, engine *analysis.Engine, transcript string, res analysis.Result, user string, duration time.Duration) (model.PracticeSession, error) {
	in := session.FromResult(transcript, res)
	in.UserID = user
	in.Duration = duration
	ps, err := session.Builder{}.Build(in)
	if err != nil {
		return model.PracticeSession{}, err
	}
	st, err := openStore()
	if err != nil {
		return model.PracticeSession{}, err
	}
	defer closeStore(st)
	sounds, words := session.Breakdown(engine.SoundRules(), ps.Feedback)
	if _, err := st.InsertSession(ctx, ps, sounds, words); err != nil {
		return model.PracticeSession{}, fmt.Errorf("failed to save session: %w", err)
	}
	return ps, nil
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a stored session",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
	cmd.Flags().StringVar(&showFormat, "format", formatText, "output format: text, json or yaml")
	return cmd
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	if err := validateFormat(showFormat); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	ps, err := st.GetSession(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", args[0], err)
	}
	return writeSession(cmd.OutOrStdout(), showFormat, ps)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyUser, "user", "", "user filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildStatsConfig(historyUser, historySince, historyLast, 1, "")
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	sessions, err := st.ListSessions(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return stats.RenderHistory(cmd.OutOrStdout(), sessions)
}
