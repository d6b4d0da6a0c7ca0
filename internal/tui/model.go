// Package tui renders a monitored run in the terminal: the agent workflow
// diagram, the run indicator, and the complete or summary activity view.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/logview"
	"github.com/Iron-Ham/crewview/internal/monitor"
	"github.com/Iron-Ham/crewview/internal/summary"
	"github.com/Iron-Ham/crewview/internal/tui/styles"
)

const appTitle = "Supplier Crew Workflow"

// Controller is what the model asks to act on key presses.
type Controller interface {
	ToggleMode() logview.Mode
	Restart()
}

// StateMsg carries a fresh monitor state into the program.
type StateMsg monitor.State

// RunDoneMsg reports that the polling loop has returned.
type RunDoneMsg struct {
	Err error
}

// Model is the bubbletea model of the workflow view.
type Model struct {
	ctrl    Controller
	styles  *styles.Styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	logs    viewport.Model

	state  monitor.State
	runErr error

	width  int
	height int
	ready  bool
}

// New creates a model. st may be nil for the default theme.
func New(ctrl Controller, st *styles.Styles) Model {
	if st == nil {
		st = styles.New(nil)
	}
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(st.Palette.StatusWorking)

	h := help.New()
	h.Styles.ShortKey = st.HelpKey
	h.Styles.FullKey = st.HelpKey

	return Model{
		ctrl:    ctrl,
		styles:  st,
		keys:    defaultKeyMap(),
		help:    h,
		spinner: sp,
		logs:    viewport.New(0, 0),
		state:   monitor.State{Indicator: monitor.IndicatorIdle},
	}
}

// NewProgram wraps m in a full-screen program.
func NewProgram(m Model, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return tea.NewProgram(m, opts...)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			if m.ctrl != nil {
				m.state.Mode = m.ctrl.ToggleMode()
			}
			m.refresh(true)
			return m, nil
		case key.Matches(msg, m.keys.Restart):
			if m.ctrl != nil {
				m.runErr = nil
				m.ctrl.Restart()
			}
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		}
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StateMsg:
		follow := m.logs.AtBottom()
		m.state = monitor.State(msg)
		m.resize()
		m.refresh(follow)
		return m, nil

	case RunDoneMsg:
		m.runErr = msg.Err
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{m.header(), renderDiagram(m.state, m.styles, m.width)}
	if m.runErr != nil {
		sections = append(sections, m.styles.Error.Render("Error: "+m.runErr.Error()))
	} else if m.state.Error != "" {
		sections = append(sections, m.styles.Error.Render("Error: "+m.state.Error))
	}
	sections = append(sections, m.logPanel(), m.styles.HelpBar.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) header() string {
	title := m.styles.Title.Render(appTitle)
	indicator := m.styles.Indicator.Render(m.state.Indicator)
	if m.state.Polling {
		indicator = m.spinner.View() + " " + indicator
	}
	return title + "  " + indicator
}

func (m Model) logPanel() string {
	label := "Complete Log"
	if m.state.Mode == logview.ModeSummary {
		label = "Summary"
	}
	title := m.styles.Subtitle.Render(label)
	body := m.logs.View()
	if !m.ready {
		body = m.logContent()
	}
	panel := m.styles.LogPanel
	if m.width > 2 {
		panel = panel.Width(m.width - 2)
	}
	return title + "\n" + panel.Render(body)
}

// resize fits the log viewport into the space the other sections leave.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	fixed := lipgloss.Height(m.header()) +
		lipgloss.Height(renderDiagram(m.state, m.styles, m.width)) +
		lipgloss.Height(m.styles.HelpBar.Render(m.help.View(m.keys))) +
		3 // panel title and border
	if m.runErr != nil || m.state.Error != "" {
		fixed++
	}
	m.logs.Width = max(m.width-4, 10)
	m.logs.Height = max(m.height-fixed, 3)
}

func (m *Model) refresh(follow bool) {
	m.logs.SetContent(m.logContent())
	if follow {
		m.logs.GotoBottom()
	}
}

func (m Model) logContent() string {
	width := m.logs.Width
	wrap := func(s string) string {
		if width <= 0 {
			return s
		}
		return lipgloss.NewStyle().Width(width).Render(s)
	}

	if m.state.Mode == logview.ModeSummary {
		if len(m.state.Summary) == 0 {
			return m.styles.Muted.Render("No activity yet")
		}
		return renderSummary(m.state.Summary, m.styles, wrap)
	}

	if len(m.state.Complete) == 0 {
		return m.styles.Muted.Render("No activity yet")
	}
	lines := make([]string, len(m.state.Complete))
	for i, e := range m.state.Complete {
		lines[i] = wrap(m.styles.LogAgent.Render(e.Agent+":") + " " + m.styles.LogStyle(e.Style).Render(e.Message))
	}
	return strings.Join(lines, "\n")
}

func renderSummary(entries []summary.Entry, s *styles.Styles, wrap func(string) string) string {
	var b strings.Builder
	var current agent.Key
	for i, e := range entries {
		if e.Key != current {
			if i > 0 {
				b.WriteString("\n")
			}
			current = e.Key
			b.WriteString(s.SummaryKey.Render(e.DisplayName) + "\n")
		}
		bullet := "  • "
		style := s.LogMessage
		if e.Completion {
			bullet = "  ✓ "
			style = s.LogStyle(logview.StyleCompleted)
		}
		b.WriteString(wrap(bullet+style.Render(e.Description)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

