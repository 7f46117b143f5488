// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typetest/internal/logging"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/passage"
	"github.com/verte-zerg/typetest/internal/session"
	"github.com/verte-zerg/typetest/internal/stats"
)

type tickMsg struct {
	run uint64
}

type keyMap struct {
	Start    key.Binding
	Duration key.Binding
	Delete   key.Binding
	DelWord  key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Duration, k.DelWord, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newKeyMap() keyMap {
	return keyMap{
		Start:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Duration: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "duration")),
		Delete:   key.NewBinding(key.WithKeys("backspace", "delete")),
		DelWord:  key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "delete word")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	machine  *session.Machine
	passages passage.Provider
	ticks    chan uint64

	keys keyMap
	help help.Model

	width  int
	height int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	timerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	resultsStyle     = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A")).
				Padding(0, 2)
	resultLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	resultValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// NewModel constructs a typing TUI model. The clock's ticks are forwarded into the Bubble Tea
// event loop; the session machine is only touched from Update.
func NewModel(st session.Store, passages passage.Provider, clock session.Clock, duration int) *Model {
	m := &Model{
		passages: passages,
		ticks:    make(chan uint64, 8),
		keys:     newKeyMap(),
		help:     help.New(),
	}
	m.machine = session.New(session.Options{
		Clock:    clock,
		Store:    st,
		Duration: duration,
		OnTick:   m.forwardTick,
	})
	m.syncKeys()
	return m
}

func (m *Model) forwardTick(run uint64) {
	select {
	case m.ticks <- run:
	default:
		logging.Logger.Warn("dropping tick, event loop is behind", "run", run)
	}
}

func waitForTick(ticks <-chan uint64) tea.Cmd {
	return func() tea.Msg {
		return tickMsg{run: <-ticks}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForTick(m.ticks)
}

// Close stops the test clock.
func (m *Model) Close() {
	m.machine.Close()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		m.machine.TickRun(msg.run)
		m.syncKeys()
		return m, waitForTick(m.ticks)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.machine.Close()
		return m, tea.Quit
	}
	defer m.syncKeys()
	if m.machine.Status() != model.StatusRunning {
		switch {
		case key.Matches(msg, m.keys.Start):
			m.machine.Start(m.machine.Duration(), m.passages.Next())
		case key.Matches(msg, m.keys.Duration):
			m.machine.SetDuration(model.NextDuration(m.machine.Duration()))
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Delete):
		m.handleBackspace()
	case key.Matches(msg, m.keys.DelWord):
		m.machine.Input(deleteLastWord(m.machine.Typed()))
	case msg.Type == tea.KeySpace:
		m.handleRunes([]rune{' '})
	case msg.Type == tea.KeyRunes:
		m.handleRunes(msg.Runes)
	}
	return m, nil
}

func (m *Model) handleBackspace() {
	runes := []rune(m.machine.Typed())
	if len(runes) == 0 {
		return
	}
	m.machine.Input(string(runes[:len(runes)-1]))
}

func (m *Model) handleRunes(runes []rune) {
	m.machine.Input(m.machine.Typed() + string(runes))
}

func (m *Model) syncKeys() {
	running := m.machine.Status() == model.StatusRunning
	m.keys.Start.SetEnabled(!running)
	m.keys.Duration.SetEnabled(!running)
	m.keys.DelWord.SetEnabled(running)
	if m.machine.Status() == model.StatusEnded {
		m.keys.Start.SetHelp("enter", "new test")
	}
}

// deleteLastWord drops trailing spaces and then the last word, keeping the separator before it.
func deleteLastWord(s string) string {
	trimmed := strings.TrimRight(s, " ")
	idx := strings.LastIndex(trimmed, " ")
	if idx < 0 {
		return ""
	}
	return trimmed[:idx+1]
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{m.renderHeader(), "", m.renderBody()}
	if m.machine.Status() == model.StatusEnded {
		sections = append(sections, "", m.renderResults())
	}
	content := strings.Join(sections, "\n")
	footer := m.renderFooter() + "\n" + m.help.View(m.keys)
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	bodyHeight := m.height - lipgloss.Height(footer)
	if bodyHeight < 1 {
		return content
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderHeader() string {
	remaining := m.machine.Duration()
	if m.machine.Status() != model.StatusIdle {
		remaining = m.machine.Remaining()
	}
	if m.machine.Status() == model.StatusEnded {
		remaining = 0
	}
	segments := []string{
		timerStyle.Render(formatClock(remaining)),
		fmt.Sprintf("%d WPM", m.machine.WPM()),
	}
	if acc, ok := m.machine.Accuracy(); ok {
		segments = append(segments, fmt.Sprintf("%.2f%%", acc))
	} else {
		segments = append(segments, "--%")
	}
	segments = append(segments, fmt.Sprintf("%ds test", m.machine.Duration()))
	return headerStyle.Render(strings.Join(segments, "  ·  "))
}

func (m *Model) renderBody() string {
	if m.machine.Status() == model.StatusIdle {
		return pendingStyle.Render(fmt.Sprintf("Press enter to start a %d second test.", m.machine.Duration()))
	}
	target := []rune(m.machine.Target())
	cursorIndex := -1
	if m.machine.Status() == model.StatusRunning && m.machine.TypedLen() < len(target) {
		cursorIndex = m.machine.TypedLen()
	}
	styled := buildStyledRunes(target, m.machine.Classes(), cursorIndex)
	width := m.contentWidth()
	if width == 0 {
		return renderStyledRunes(styled)
	}
	return lipgloss.NewStyle().Width(width).Render(wrapStyledRunes(styled, width))
}

func (m *Model) renderResults() string {
	attempt, ok := m.machine.LastAttempt()
	if !ok {
		return ""
	}
	rows := [][2]string{
		{"WPM", fmt.Sprintf("%d", attempt.WPM)},
		{"Accuracy", fmt.Sprintf("%.2f%%", attempt.Accuracy)},
		{"Characters typed", fmt.Sprintf("%d", m.machine.TypedLen())},
		{"Correct characters", fmt.Sprintf("%d", m.machine.Correct())},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, resultLabelStyle.Render(fmt.Sprintf("%-20s", r[0]))+resultValueStyle.Render(r[1]))
	}
	return resultsStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter() string {
	history := m.machine.History()
	segments := []string{}
	if m.machine.Status() == model.StatusRunning {
		target := len([]rune(m.machine.Target()))
		progress := 0
		if target > 0 {
			progress = m.machine.TypedLen() * 100 / target
			if progress > 100 {
				progress = 100
			}
		}
		segments = append(segments, fmt.Sprintf("Progress %d%%", progress))
	}
	if len(history) > 0 {
		last := history[len(history)-1]
		segments = append(segments, fmt.Sprintf("Last %d WPM · %.1f%%", last.WPM, last.Accuracy))
		all := stats.Summarize(history)
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", all.AvgWPM, all.AvgAccuracy))
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
