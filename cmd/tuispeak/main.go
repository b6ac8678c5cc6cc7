// Package main provides the CLI entrypoint for tuispeak.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuispeak/internal/analysis"
	"github.com/verte-zerg/tuispeak/internal/config"
	"github.com/verte-zerg/tuispeak/internal/generator"
	"github.com/verte-zerg/tuispeak/internal/lesson"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/speech"
	"github.com/verte-zerg/tuispeak/internal/stats"
	"github.com/verte-zerg/tuispeak/internal/statsui"
	"github.com/verte-zerg/tuispeak/internal/store"
	"github.com/verte-zerg/tuispeak/internal/tui"
)

const (
	defaultWeakTop     = 3
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 5
)

var (
	practiceUser       string
	practiceLesson     string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int
	practiceJitter     bool
	practiceMute       bool

	statsUser        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsSounds      string
	statsPlain       bool

	sayRate  float64
	sayVoice string
	saySlow  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuispeak",
		Short:         "TUI speaking practice with pronunciation, grammar and vocabulary feedback",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceUser, "user", "", "user id recorded with sessions")
	rootCmd.Flags().StringVar(&practiceLesson, "lesson", "", "lesson name or file (default: all lessons)")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias prompts toward weak sounds")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak sounds to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak sounds")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak sounds")
	rootCmd.Flags().BoolVar(&practiceJitter, "jitter", false, "randomize base pronunciation scores")
	rootCmd.Flags().BoolVar(&practiceMute, "mute", false, "disable speech output")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLessonsCmd())
	rootCmd.AddCommand(newSayCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyPracticeConfig(cmd, fileCfg.Practice)

	cfg := model.Config{
		User:       practiceUser,
		Lesson:     practiceLesson,
		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakFactor: practiceWeakFactor,
		WeakWindow: practiceWeakWindow,
		Jitter:     practiceJitter,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	voice := voiceConfig(fileCfg.Speech)

	prompts, err := loadPrompts(cfg.Lesson, voice.Lang)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	weakSounds := []string{}
	weakNoticePrinted := false
	if cfg.FocusWeak {
		aggs, err := st.GetWeakSounds(context.Background(), cfg.WeakWindow, cfg.User)
		if err != nil {
			logErrf("failed to load weak sounds: %v\n", err)
		} else {
			weakSounds = stats.SelectWeakSounds(aggs, cfg.WeakTop)
			if len(weakSounds) == 0 {
				logErrln("no flagged sounds yet; picking prompts uniformly")
				weakNoticePrinted = true
			}
		}
	}

	var speaker speech.Speaker
	if !practiceMute {
		speaker = speech.NewCommandSpeaker(voice)
	}

	gen := generator.New()
	engine := newEngine(gen, cfg.Jitter, nil)
	m := tui.NewModel(cfg, st, engine, gen, prompts, speaker, weakSounds, weakNoticePrinted)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// newEngine builds the analysis engine. The TUI passes a nil logger so faults
// do not write over the alternate screen.
func newEngine(gen *generator.Generator, jitter bool, logger *slog.Logger) *analysis.Engine {
	opts := []analysis.Option{analysis.WithLogger(logger)}
	if jitter {
		opts = append(opts, analysis.WithBaseScorer(gen.NewJitter()))
	}
	return analysis.New(opts...)
}

func newStderrLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func loadPrompts(name, lang string) ([]string, error) {
	lessons, err := lesson.Resolve(config.DefaultLessonDir(), name)
	if err != nil {
		return nil, fmt.Errorf("failed to load lessons: %w", err)
	}
	prompts := lesson.Filter(lesson.Prompts(lessons), lesson.FilterForLang(lang))
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts available for lesson %q", name)
	}
	return prompts, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List available lessons",
		Args:  cobra.NoArgs,
		RunE:  runLessonsCmd,
	}
}

func runLessonsCmd(cmd *cobra.Command, _ []string) error {
	lessons, err := lesson.Resolve(config.DefaultLessonDir(), "")
	if err != nil {
		return fmt.Errorf("failed to load lessons: %w", err)
	}
	return writeLessons(cmd.OutOrStdout(), lessons)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsUser, "user", "", "user filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsSounds, "sound", "", "sounds for per-sound curves, comma separated")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)

	cfg, err := buildStatsConfig(statsUser, statsSince, statsLast, statsCurveWindow, statsSounds)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsPlain {
		return writePlainStats(cmd.Context(), cmd.OutOrStdout(), st, cfg)
	}
	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func buildStatsConfig(user, since string, last, window int, sounds string) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{
		User:        user,
		Since:       sinceTime,
		Last:        last,
		CurveWindow: window,
		Sounds:      sounds,
	}, nil
}

func newSayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "say <text...>",
		Short: "Read text aloud with the configured voice",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSayCmd,
	}
	cmd.Flags().Float64Var(&sayRate, "rate", 0, "speech rate (0.1-10, default from config)")
	cmd.Flags().StringVar(&sayVoice, "voice", "", "voice name (default from config)")
	cmd.Flags().BoolVar(&saySlow, "slow", false, "use the slow rate for single words")
	return cmd
}

func runSayCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	voice := voiceConfig(fileCfg.Speech)
	opts := speech.Options{Rate: sayRate, Voice: sayVoice}
	if saySlow && !cmd.Flags().Changed("rate") {
		opts.Rate = speech.SlowRate
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return speech.NewCommandSpeaker(voice).Speak(ctx, strings.Join(args, " "), opts)
}

func voiceConfig(fc config.SpeechConfig) model.VoiceConfig {
	v := model.VoiceConfig{Command: speech.DefaultCommand, Lang: speech.DefaultLang}
	setString(&v.Command, fc.Command)
	setString(&v.Voice, fc.Voice)
	setString(&v.Lang, fc.Lang)
	setFloat(&v.Rate, fc.Rate)
	setFloat(&v.Pitch, fc.Pitch)
	setFloat(&v.Volume, fc.Volume)
	return v
}

func setString(target, value *string) {
	if value != nil && strings.TrimSpace(*value) != "" {
		*target = *value
	}
}

func setFloat(target, value *float64) {
	if value != nil {
		*target = *value
	}
}

func applyPracticeConfig(cmd *cobra.Command, pc config.PracticeConfig) {
	applyStringConfig(cmd, "user", &practiceUser, pc.User)
	applyStringConfig(cmd, "lesson", &practiceLesson, pc.Lesson)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, pc.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, pc.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, pc.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, pc.WeakWindow)
	applyBoolConfig(cmd, "jitter", &practiceJitter, pc.Jitter)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuispeak configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# user = ""               # User id recorded with sessions
# lesson = ""             # Lesson name or file (default: all lessons)
# focus-weak = false      # Bias prompts toward weak sounds
# weak-top = %d            # Number of weak sounds to focus on
# weak-factor = %.1f      # Weight factor for weak sounds
# weak-window = %d        # Number of recent sessions to compute weak sounds
# jitter = false          # Randomize base pronunciation scores

[speech]
# command = %q    # Synthesizer command; extra arguments allowed
# voice = ""              # Voice name
# lang = %q          # Preferred voice language
# rate = %.1f             # 0.1-10
# pitch = %.1f            # 0-2
# volume = %.1f           # 0-1

[stats]
# curve-window = %d        # Moving average window
`,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		speech.DefaultCommand,
		speech.DefaultLang,
		speech.DefaultRate,
		speech.DefaultPitch,
		speech.DefaultVolume,
		defaultCurveWindow,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
