// Package styles builds the lipgloss styles of the workflow view from a
// color palette.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/logview"
)

// Styles holds every style the TUI renders with.
type Styles struct {
	Palette *ColorPalette

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Muted     lipgloss.Style
	Indicator lipgloss.Style
	Error     lipgloss.Style

	// Agent boxes
	AgentBox  lipgloss.Style
	AgentName lipgloss.Style
	AgentRole lipgloss.Style

	// Log panel
	LogPanel   lipgloss.Style
	LogAgent   lipgloss.Style
	LogMessage lipgloss.Style
	SummaryKey lipgloss.Style

	// Help bar
	HelpBar lipgloss.Style
	HelpKey lipgloss.Style
}

// New builds styles from a palette.
func New(p *ColorPalette) *Styles {
	if p == nil {
		p = DefaultPalette()
	}
	return &Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),
		Muted: lipgloss.NewStyle().Foreground(p.Muted),
		Indicator: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			Background(p.Surface).
			Padding(0, 1),
		Error: lipgloss.NewStyle().Foreground(p.Error),

		AgentBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		AgentName: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),
		AgentRole: lipgloss.NewStyle().Foreground(p.Muted),

		LogPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border),
		LogAgent: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		LogMessage: lipgloss.NewStyle().Foreground(p.Text),
		SummaryKey: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Secondary),

		HelpBar: lipgloss.NewStyle().
			Foreground(p.Muted).
			MarginTop(1),
		HelpKey: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Secondary),
	}
}

// ForTheme builds styles for a named theme.
func ForTheme(name string) *Styles {
	return New(GetPalette(ThemeName(name)))
}

// StatusColor returns the color for an agent status.
func (s *Styles) StatusColor(status agent.Status) lipgloss.Color {
	switch status {
	case agent.StatusWorking:
		return s.Palette.StatusWorking
	case agent.StatusCompleted:
		return s.Palette.StatusCompleted
	default:
		return s.Palette.StatusWaiting
	}
}

// StatusIcon returns the icon for an agent status.
func StatusIcon(status agent.Status) string {
	switch status {
	case agent.StatusWorking:
		return "●"
	case agent.StatusCompleted:
		return "✓"
	default:
		return "○"
	}
}

// Box returns the agent box style for a status.
func (s *Styles) Box(status agent.Status) lipgloss.Style {
	return s.AgentBox.BorderForeground(s.StatusColor(status))
}

// Connector returns the style of a workflow edge.
func (s *Styles) Connector(completed bool) lipgloss.Style {
	if completed {
		return lipgloss.NewStyle().Foreground(s.Palette.StatusCompleted)
	}
	return lipgloss.NewStyle().Foreground(s.Palette.Border)
}

// LogStyle returns the message style for a complete-log style class.
func (s *Styles) LogStyle(class string) lipgloss.Style {
	switch class {
	case logview.StyleCompleted:
		return s.LogMessage.Foreground(s.Palette.StatusCompleted)
	case logview.StyleWorking:
		return s.LogMessage.Foreground(s.Palette.StatusWorking)
	case logview.StyleError:
		return s.LogMessage.Foreground(s.Palette.Error)
	default:
		return s.LogMessage
	}
}
