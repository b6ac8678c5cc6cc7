// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/stats"
	"github.com/verte-zerg/tuispeak/internal/store"
)

const (
	tabOverview = iota
	tabSoundTable
	tabSoundCurves
	tabWeakWords
)

const (
	plotHeight     = 10
	defaultSoundsN = 5
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report      stats.Report
	errMsg      string
	soundErrMsg string

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	soundTable table.Model
	tableRows  int

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	soundSelection       []string
	soundSelectionCustom bool
	soundPerSession      map[int64]map[string]model.SoundAggregate

	soundInputMode bool
	soundInput     textinput.Model
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Sounds", "Sound Curves", "Weak Words"},
	}
	m.soundSelection = parseSounds(cfg.Sounds)
	m.soundSelectionCustom = len(m.soundSelection) > 0
	m.initInputs()
	m.soundInput = newFilterInput("Sounds: ")
	m.soundInput.Placeholder = "th, r, l"
	m.soundTable = buildSoundTable(nil, 0, 1)
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.soundInputMode {
			return m.updateSoundInput(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabSoundCurves {
				return m.startSoundInput()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabSoundTable {
				m.soundTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabSoundTable {
				m.soundTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabSoundTable {
				m.soundTable, cmd = m.soundTable.Update(msg)
				return m, cmd
			}
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.soundInputMode {
		return fitLines(m.renderSoundModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("User: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[0].SetValue(strings.TrimSpace(m.cfg.User))
	since := ""
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	m.filterInputs[1].SetValue(since)
	last := ""
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	m.filterInputs[2].SetValue(last)
	m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.soundTable.SetWidth(m.width)
	m.soundTable.SetHeight(max(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
	promptWidth := lipgloss.Width(m.soundInput.Prompt)
	m.soundInput.Width = max(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabSoundTable {
		m.soundTable.Focus()
	} else {
		m.soundTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return padLines(m.renderTabs(), m.width) + "\n" + padLines(m.renderFilterSummary(), m.width)
}

func (m *Model) renderFilterSummary() string {
	user := m.cfg.User
	if user == "" {
		user = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: user=%s  since=%s  last=%s  window=%d", user, since, last, m.cfg.CurveWindow)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	if m.activeTab == tabSoundCurves {
		help = "Nav: left/right  Scroll: up/down  Edit sounds: enter  Window: -/=  Settings: /  Quit: q"
	}
	help = headerStyle.Render(help)
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabSoundTable {
		switch {
		case len(m.report.Sessions) == 0:
			return fitLines("No sessions found.", m.width, height)
		case m.tableRows == 0:
			return fitLines("No sound stats found.", m.width, height)
		default:
			return fitLines(tableMutedStyle.Render(m.soundTable.View()), m.width, height)
		}
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.soundErrMsg = ""
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	if !m.soundSelectionCustom {
		m.soundSelection = stats.TopSoundsByFrequency(m.report.SoundAggsAll, defaultSoundsN)
	}
	m.loadSoundPerSession()
	_, bodyHeight, _ := m.layoutHeights()
	m.soundTable = buildSoundTable(m.report.SoundAggsWindow, m.contentWidth(), bodyHeight)
	m.tableRows = len(m.soundTable.Rows())
	if m.activeTab == tabSoundTable {
		m.soundTable.Focus()
	}
	m.renderTabContents()
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.contentWidth()
	m.viewports[tabOverview].SetContent(renderOverview(m.report.Sessions, m.cfg.CurveWindow, width))
	m.viewports[tabSoundCurves].SetContent(renderSoundCurves(m.report.Sessions, m.soundSelection, m.soundPerSession, m.cfg.CurveWindow, width, m.soundErrMsg))
	m.viewports[tabWeakWords].SetContent(renderWeakWords(m.report))
}

func renderOverview(sessions []model.SessionAggregate, window, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, sessions, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	curves := strings.TrimRight(buf.String(), "\n")
	return strings.TrimRight(renderSummaryCards(sessions, width)+"\n\n"+curves, "\n")
}

func renderSummaryCards(sessions []model.SessionAggregate, width int) string {
	s := stats.Summarize(sessions)
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", s.Sessions)),
		metricCard("Avg Overall", fmt.Sprintf("%.1f", s.AvgOverall)),
		metricCard("Best Overall", fmt.Sprintf("%d", s.BestOverall)),
		metricCard("Total XP", fmt.Sprintf("%d", s.TotalXP)),
		metricCard("Level", fmt.Sprintf("%d", s.Level)),
		metricCard("Practice", (time.Duration(s.PracticeSeconds) * time.Second).String()),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...)
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderSoundCurves(sessions []model.SessionAggregate, sounds []string, perSession map[int64]map[string]model.SoundAggregate, window, width int, errMsg string) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	if errMsg != "" {
		return fmt.Sprintf("Failed to load sound curves: %s", errMsg)
	}
	if len(sounds) == 0 {
		return "No sounds selected. Press Enter to set sounds."
	}
	header := headerStyle.Render(fmt.Sprintf("Sounds: %s", strings.Join(sounds, ", ")))
	var buf bytes.Buffer
	if err := stats.RenderSoundCurvesWithSize(&buf, sessions, perSession, sounds, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render sound curves: %v", err)
	}
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}

func renderWeakWords(report stats.Report) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	var buf bytes.Buffer
	if err := stats.RenderWeakWords(&buf, report.WeakWords); err != nil {
		return fmt.Sprintf("Failed to render weak words: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func buildSoundTable(aggs []model.SoundAggregate, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Sound", Width: 6},
		{Title: "Avg Score", Width: 10},
		{Title: "Flag Rate", Width: 10},
		{Title: "Words", Width: 7},
		{Title: "Flagged", Width: 8},
	}
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range stats.SortByWeakness(aggs) {
		rows = append(rows, table.Row{
			agg.Sound,
			fmt.Sprintf("%.1f", stats.AvgScore(agg)),
			fmt.Sprintf("%.2f%%", stats.FlagRate(agg)*100),
			fmt.Sprintf("%d", agg.Matched),
			fmt.Sprintf("%d", agg.Flagged),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(soundTableStyles())
	return t
}

func soundTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := parseFilter(m.cfg, m.filterValues())
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) filterValues() []string {
	out := make([]string, len(m.filterInputs))
	for i, input := range m.filterInputs {
		out[i] = strings.TrimSpace(input.Value())
	}
	return out
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

// parseFilter reads user, since, last and window values into a copy of cfg.
func parseFilter(cfg model.StatsConfig, values []string) (model.StatsConfig, error) {
	var since *time.Time
	if values[1] != "" {
		parsed, err := time.ParseInLocation("2006-01-02", values[1], time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}
	last := 0
	if values[2] != "" {
		parsed, err := strconv.Atoi(values[2])
		if err != nil || parsed < 0 {
			return cfg, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}
	window := 1
	if values[3] != "" {
		parsed, err := strconv.Atoi(values[3])
		if err != nil || parsed < 1 {
			return cfg, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}
	cfg.User = values[0]
	cfg.Since = since
	cfg.Last = last
	cfg.CurveWindow = window
	return cfg, nil
}

func (m *Model) startSoundInput() (tea.Model, tea.Cmd) {
	m.soundInputMode = true
	m.soundInput.SetValue(strings.Join(m.soundSelection, ", "))
	return m, m.soundInput.Focus()
}

func (m *Model) updateSoundInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.soundInputMode = false
		return m, nil
	case tea.KeyEnter:
		m.applySoundInput()
		m.soundInputMode = false
		m.loadSoundPerSession()
		m.renderTabContents()
		return m, nil
	}
	var cmd tea.Cmd
	m.soundInput, cmd = m.soundInput.Update(msg)
	return m, cmd
}

func (m *Model) applySoundInput() {
	sounds := parseSounds(m.soundInput.Value())
	if len(sounds) == 0 {
		m.soundSelectionCustom = false
		m.soundSelection = stats.TopSoundsByFrequency(m.report.SoundAggsAll, defaultSoundsN)
		return
	}
	m.soundSelectionCustom = true
	m.soundSelection = sounds
}

func (m *Model) renderSoundModal() string {
	body := []string{
		cardValueStyle.Render("Select Sounds"),
		m.soundInput.View(),
		headerStyle.Render("Separate sounds with commas or spaces. Empty resets to the most frequent."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) loadSoundPerSession() {
	m.soundErrMsg = ""
	m.soundPerSession = nil
	if len(m.report.Sessions) == 0 || len(m.soundSelection) == 0 {
		return
	}
	perSession, err := m.store.ListSoundStatsForSessions(context.Background(), m.report.SessionIDs(), m.soundSelection)
	if err != nil {
		m.soundErrMsg = err.Error()
		return
	}
	m.soundPerSession = perSession
}

// parseSounds splits on commas and whitespace, lowercases and drops duplicates.
func parseSounds(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(f)
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	// 2 border + 4 padding
	return max(10, modalWidth(width)-6)
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
