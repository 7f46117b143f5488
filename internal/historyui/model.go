// Package historyui provides the Bubble Tea attempt history interface.
package historyui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/stats"
)

const (
	tabOverview = iota
	tabAttempts
)

const plotHeight = 10

var tabNames = []string{"Overview", "Attempts"}

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Underline(true).
			Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8C8C8C")).
				Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Wider    key.Binding
	Narrower key.Binding
	Filter   key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Narrower, k.Wider, k.Filter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Top, k.Bottom}}
}

func newKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next tab")),
		Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev tab")),
		Wider:    key.NewBinding(key.WithKeys("="), key.WithHelp("=", "wider window")),
		Narrower: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "narrower window")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "settings")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model implements the Bubble Tea history UI.
type Model struct {
	lister stats.AttemptLister
	cfg    model.HistoryConfig

	report stats.Report
	errMsg string

	activeTab int
	overview  viewport.Model
	attempts  table.Model

	keys keyMap
	help help.Model

	filtering bool
	form      filterForm

	width  int
	height int
}

// NewModel constructs a history UI model.
func NewModel(lister stats.AttemptLister, cfg model.HistoryConfig) *Model {
	if cfg.Window < 1 {
		cfg.Window = 1
	}
	m := &Model{
		lister:   lister,
		cfg:      cfg,
		overview: viewport.New(0, 0),
		attempts: newAttemptTable(),
		keys:     newKeyMap(),
		help:     help.New(),
		form:     newFilterForm(),
	}
	m.reload()
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
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m, m.updateFilter(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.selectTab(m.activeTab + 1)
		return tea.ClearScreen
	case key.Matches(msg, m.keys.Prev):
		m.selectTab(m.activeTab - 1)
		return tea.ClearScreen
	case key.Matches(msg, m.keys.Wider):
		m.cfg.Window = nextCurveWindow(m.cfg.Window)
		m.reload()
		return nil
	case key.Matches(msg, m.keys.Narrower):
		m.cfg.Window = prevCurveWindow(m.cfg.Window)
		m.reload()
		return nil
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m.form.open(m.cfg)
	case key.Matches(msg, m.keys.Top):
		m.overview.GotoTop()
		m.attempts.GotoTop()
		return nil
	case key.Matches(msg, m.keys.Bottom):
		m.overview.GotoBottom()
		m.attempts.GotoBottom()
		return nil
	}
	var cmd tea.Cmd
	if m.activeTab == tabAttempts {
		m.attempts, cmd = m.attempts.Update(msg)
	} else {
		m.overview, cmd = m.overview.Update(msg)
	}
	return cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		m.filtering = false
		return nil
	case tea.KeyEnter:
		cfg, ok := m.form.config()
		if !ok {
			return nil
		}
		m.cfg = cfg
		m.filtering = false
		m.reload()
		return nil
	case tea.KeyTab, tea.KeyDown:
		return m.form.focusField(m.form.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.form.focusField(m.form.focus - 1)
	}
	return m.form.update(msg)
}

func (m *Model) selectTab(idx int) {
	m.activeTab = (idx + len(tabNames)) % len(tabNames)
	if m.activeTab == tabAttempts {
		m.attempts.Focus()
	} else {
		m.attempts.Blur()
	}
}

// bodyHeight is what remains after the two header lines and the footer.
func (m *Model) bodyHeight() int {
	footer := 1
	if m.errMsg != "" {
		footer++
	}
	return maxInt(1, m.height-2-footer)
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := m.bodyHeight()
	m.overview.Width = m.width
	m.overview.Height = h
	m.attempts.SetWidth(m.width)
	m.attempts.SetHeight(maxInt(1, h-1))
	m.help.Width = m.width
	m.form.setWidth(m.width)
}

func (m *Model) reload() {
	report, err := stats.BuildReport(context.Background(), m.lister, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
		m.overview.SetContent("Failed to load history.")
		m.attempts.SetRows(nil)
		m.resize()
		return
	}
	m.errMsg = ""
	m.report = report
	m.attempts.SetRows(attemptRows(report.Attempts))
	m.resize()
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report.Attempts, m.cfg.Window, width))
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	box := lipgloss.NewStyle().MaxWidth(m.width)
	header := box.Render(m.renderTabs() + "\n" + m.renderSettings())
	body := box.Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(m.renderBody())
	return lipgloss.JoinVertical(lipgloss.Left, header, body, box.Render(m.renderFooter()))
}

func (m *Model) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if i == m.activeTab {
			parts[i] = activeTabStyle.Render(name)
		} else {
			parts[i] = inactiveTabStyle.Render(name)
		}
	}
	return strings.Join(parts, headerStyle.Render("│"))
}

func (m *Model) renderSettings() string {
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = fmt.Sprintf("%d", m.cfg.Last)
	}
	line := fmt.Sprintf("since=%s  last=%s  window=%d  showing %d of %d",
		since, last, m.cfg.Window, len(m.report.Attempts), m.report.TotalStored)
	return headerStyle.Render(runewidth.Truncate(line, m.width, "..."))
}

func (m *Model) renderBody() string {
	switch {
	case m.filtering:
		return m.form.view()
	case m.activeTab == tabAttempts && len(m.report.Attempts) == 0:
		return "No attempts found."
	case m.activeTab == tabAttempts:
		return tableMutedStyle.Render(m.attempts.View())
	default:
		return m.overview.View()
	}
}

func (m *Model) renderFooter() string {
	if m.filtering {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	footer := m.help.View(m.keys)
	if m.errMsg != "" {
		footer += "\n" + errorStyle.Render(m.errMsg)
	}
	return footer
}

func renderOverview(attempts []model.Attempt, window, width int) string {
	if len(attempts) == 0 {
		return "No attempts found."
	}
	return strings.TrimRight(renderSummaryCards(attempts, width)+"\n\n"+renderCurves(attempts, window, width), "\n")
}

func renderSummaryCards(attempts []model.Attempt, width int) string {
	s := stats.Summarize(attempts)
	cards := []string{
		metricCard("Attempts", fmt.Sprintf("%d", s.Attempts)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", s.AvgWPM)),
		metricCard("Best WPM", fmt.Sprintf("%d", s.BestWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", s.AvgAccuracy)),
	}
	if width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func renderCurves(attempts []model.Attempt, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, attempts, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func newAttemptTable() table.Model {
	widths := []int{5, 17, 6, 9, 9}
	columns := make([]table.Column, len(stats.AttemptTableHeaders))
	for i, title := range stats.AttemptTableHeaders {
		columns[i] = table.Column{Title: title, Width: widths[i]}
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.NoColor{})
	return table.New(table.WithColumns(columns), table.WithHeight(1), table.WithStyles(styles))
}

func attemptRows(attempts []model.Attempt) []table.Row {
	cells := stats.AttemptRows(attempts)
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}
	return rows
}

// nextCurveWindow steps the moving-average window up to the next multiple of five.
func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	switch {
	case n <= 5:
		return 1
	case n%5 == 0:
		return n - 5
	default:
		return n / 5 * 5
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
