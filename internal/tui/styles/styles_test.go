package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/logview"
)

func TestIsValidTheme(t *testing.T) {
	tests := []struct {
		theme string
		want  bool
	}{
		{"default", true},
		{"monokai", true},
		{"dracula", true},
		{"nord", true},
		{"neon", false},
		{"", false},
		{"Default", false}, // Case sensitive
	}
	for _, tt := range tests {
		t.Run(tt.theme, func(t *testing.T) {
			if got := IsValidTheme(tt.theme); got != tt.want {
				t.Errorf("IsValidTheme(%q) = %v, want %v", tt.theme, got, tt.want)
			}
		})
	}
}

func TestGetPalette(t *testing.T) {
	if got := GetPalette(ThemeDracula).Primary; got != lipgloss.Color("#BD93F9") {
		t.Errorf("dracula primary = %q", got)
	}
	if got := GetPalette("unknown").Primary; got != DefaultPalette().Primary {
		t.Errorf("unknown theme should fall back to default, got %q", got)
	}
}

func TestStatusColor(t *testing.T) {
	s := New(nil)
	p := DefaultPalette()

	tests := []struct {
		status agent.Status
		want   lipgloss.Color
	}{
		{agent.StatusWaiting, p.StatusWaiting},
		{agent.StatusWorking, p.StatusWorking},
		{agent.StatusCompleted, p.StatusCompleted},
		{agent.Status("bogus"), p.StatusWaiting},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := s.StatusColor(tt.status); got != tt.want {
				t.Errorf("StatusColor(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestStatusIcon(t *testing.T) {
	tests := map[agent.Status]string{
		agent.StatusWaiting:   "○",
		agent.StatusWorking:   "●",
		agent.StatusCompleted: "✓",
	}
	for status, want := range tests {
		if got := StatusIcon(status); got != want {
			t.Errorf("StatusIcon(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestLogStyle(t *testing.T) {
	s := ForTheme("nord")
	p := NordPalette()

	tests := []struct {
		class string
		want  lipgloss.TerminalColor
	}{
		{logview.StyleCompleted, p.StatusCompleted},
		{logview.StyleWorking, p.StatusWorking},
		{logview.StyleError, p.Error},
		{logview.StyleNone, p.Text},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			if got := s.LogStyle(tt.class).GetForeground(); got != tt.want {
				t.Errorf("LogStyle(%q) foreground = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

func TestConnector(t *testing.T) {
	s := New(DefaultPalette())
	if got := s.Connector(true).GetForeground(); got != DefaultPalette().StatusCompleted {
		t.Errorf("completed connector = %v", got)
	}
	if got := s.Connector(false).GetForeground(); got != DefaultPalette().Border {
		t.Errorf("pending connector = %v", got)
	}
}
