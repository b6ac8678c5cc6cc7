// Package tui provides the Bubble Tea speaking practice interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuispeak/internal/analysis"
	"github.com/verte-zerg/tuispeak/internal/generator"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/session"
	"github.com/verte-zerg/tuispeak/internal/speech"
	statsPkg "github.com/verte-zerg/tuispeak/internal/stats"
	"github.com/verte-zerg/tuispeak/internal/store"
)

type screen int

const (
	screenInput screen = iota
	screenAnalyzing
	screenResult
)

type analyzedMsg struct {
	transcript string
	duration   time.Duration
	result     analysis.Result
}

type spokeMsg struct {
	err error
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	config            model.Config
	store             *store.Store
	engine            *analysis.Engine
	builder           session.Builder
	gen               *generator.Generator
	prompts           []string
	speaker           speech.Speaker
	weakSounds        []string
	weakNoticePrinted bool

	width  int
	height int

	screen   screen
	prompt   string
	input    textinput.Model
	result   viewport.Model
	notice   string
	lastSeen model.PracticeSession

	started   bool
	startedAt time.Time

	lastOverall int
	hasLast     bool
	overallSum  int
	sessions    int
	totalXP     int
}

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	weakStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	sectionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	goodScoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	fairScoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a practice TUI model. speaker may be nil to disable speech.
func NewModel(cfg model.Config, st *store.Store, engine *analysis.Engine, gen *generator.Generator, prompts []string, speaker speech.Speaker, weakSounds []string, weakNoticePrinted bool) *Model {
	m := &Model{
		config:            cfg,
		store:             st,
		engine:            engine,
		gen:               gen,
		prompts:           prompts,
		speaker:           speaker,
		weakSounds:        weakSounds,
		weakNoticePrinted: weakNoticePrinted,
		input:             newTranscriptInput(),
		result:            viewport.New(0, 0),
	}
	m.nextPrompt()
	m.loadFooterStats()
	return m
}

func newTranscriptInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "type or paste what you said, then press enter"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	input.Focus()
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case analyzedMsg:
		m.finishSession(msg)
		return m, nil
	case spokeMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyCtrlN:
		m.nextPrompt()
		return m, nil
	case tea.KeyCtrlP:
		return m, m.speak(m.prompt, speech.Options{})
	}

	switch m.screen {
	case screenAnalyzing:
		return m, nil
	case screenResult:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.resetAttempt()
			return m, nil
		case tea.KeyCtrlW:
			words := flaggedWords(m.lastSeen.Feedback.Pronunciation)
			if len(words) == 0 {
				m.notice = "No flagged words to repeat."
				return m, nil
			}
			return m, m.speak(strings.Join(words, ", "), speech.Options{Rate: speech.SlowRate})
		}
		var cmd tea.Cmd
		m.result, cmd = m.result.Update(msg)
		return m, cmd
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.resetAttempt()
		return m, nil
	case tea.KeyEnter:
		return m, m.submit()
	}
	if !m.started && msg.Type == tea.KeyRunes {
		m.started = true
		m.startedAt = time.Now()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := m.contentWidth()
	var body string
	switch m.screen {
	case screenResult:
		body = m.result.View()
	case screenAnalyzing:
		body = labelStyle.Render("Analyzing...")
	default:
		wrapped := wrapStyledRunes(buildStyledRunes(m.prompt, m.weakSounds), contentWidth)
		body = lipgloss.NewStyle().Width(contentWidth).Render(wrapped) + "\n\n" + m.input.View()
	}
	if m.notice != "" {
		body += "\n\n" + renderMessage(m.notice, contentWidth)
	}
	if m.width == 0 || m.height == 0 {
		return body + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	content := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, body)
	help := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footerStyle.Render(m.helpLine()))
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return content + "\n" + help + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) updateLayout() {
	width := m.contentWidth()
	m.input.Width = max(10, width-lipgloss.Width(m.input.Prompt)-1)
	m.result.Width = width
	m.result.Height = max(1, m.height-4)
	if m.screen == screenResult {
		m.result.SetContent(renderResult(m.lastSeen, width))
	}
}

func (m *Model) helpLine() string {
	if m.screen == screenResult {
		return "enter/esc: next attempt  ctrl+w: repeat flagged words  ctrl+p: speak prompt  ctrl+n: new prompt  ctrl+c: quit"
	}
	return "enter: analyze  esc: clear  ctrl+p: speak prompt  ctrl+n: new prompt  ctrl+c: quit"
}

func (m *Model) submit() tea.Cmd {
	transcript := m.input.Value()
	if strings.TrimSpace(transcript) == "" {
		m.notice = analysis.NoSpeechMessage
		return nil
	}
	var duration time.Duration
	if m.started {
		duration = time.Since(m.startedAt)
	}
	m.screen = screenAnalyzing
	m.notice = ""
	engine, original := m.engine, m.prompt
	return func() tea.Msg {
		return analyzedMsg{
			transcript: transcript,
			duration:   duration,
			result:     engine.Analyze(transcript, original),
		}
	}
}

func (m *Model) speak(text string, opts speech.Options) tea.Cmd {
	if m.speaker == nil {
		m.notice = "Speech output is not configured."
		return nil
	}
	speaker := m.speaker
	return func() tea.Msg {
		return spokeMsg{err: speaker.Speak(context.Background(), text, opts)}
	}
}

func (m *Model) finishSession(msg analyzedMsg) {
	in := session.FromResult(msg.transcript, msg.result)
	in.UserID = m.config.User
	in.Duration = msg.duration
	ps, err := m.builder.Build(in)
	if err != nil {
		m.screen = screenInput
		switch {
		case errors.Is(err, session.ErrNoSpeech):
			m.notice = analysis.NoSpeechMessage
		default:
			m.notice = msg.result.Feedback.Overall
		}
		return
	}

	if m.store != nil {
		sounds, words := session.Breakdown(m.engine.SoundRules(), ps.Feedback)
		if _, err := m.store.InsertSession(context.Background(), ps, sounds, words); err != nil {
			logErrf("failed to save session: %v\n", err)
		}
	}

	m.lastSeen = ps
	m.lastOverall = ps.Scores.Overall
	m.hasLast = true
	m.overallSum += ps.Scores.Overall
	m.sessions++
	m.totalXP += ps.XPGained
	m.screen = screenResult
	m.result.SetContent(renderResult(ps, m.contentWidth()))
	m.result.GotoTop()

	if m.config.FocusWeak {
		m.refreshWeakSounds()
	}
}

func (m *Model) resetAttempt() {
	m.screen = screenInput
	m.notice = ""
	m.started = false
	m.startedAt = time.Time{}
	m.input.Reset()
	m.input.Focus()
}

func (m *Model) nextPrompt() {
	if m.config.FocusWeak && len(m.weakSounds) > 0 {
		m.prompt = m.gen.PickWeighted(m.prompts, m.weakSounds, m.config.WeakFactor)
	} else {
		m.prompt = m.gen.Pick(m.prompts)
	}
	m.resetAttempt()
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{User: m.config.User})
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	summary := statsPkg.Summarize(sessions)
	m.lastOverall = sessions[len(sessions)-1].Scores.Overall
	m.hasLast = true
	m.sessions = summary.Sessions
	m.totalXP = summary.TotalXP
	for _, s := range sessions {
		m.overallSum += s.Scores.Overall
	}
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d", m.lastOverall))
	}
	if m.sessions > 0 {
		segments = append(segments, fmt.Sprintf("Avg %.1f over %d", float64(m.overallSum)/float64(m.sessions), m.sessions))
	}
	segments = append(segments, fmt.Sprintf("XP %d · Level %d", m.totalXP, session.Level(m.totalXP)))
	if m.config.FocusWeak && len(m.weakSounds) > 0 {
		segments = append(segments, "Weak "+strings.Join(m.weakSounds, ", "))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) refreshWeakSounds() {
	if m.store == nil {
		return
	}
	aggs, err := m.store.GetWeakSounds(context.Background(), m.config.WeakWindow, m.config.User)
	if err != nil {
		logErrf("failed to load weak sounds: %v\n", err)
		return
	}
	m.weakSounds = statsPkg.SelectWeakSounds(aggs, m.config.WeakTop)
	if len(m.weakSounds) == 0 && !m.weakNoticePrinted {
		logErrln("no flagged sounds yet; picking prompts uniformly")
		m.weakNoticePrinted = true
	}
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
