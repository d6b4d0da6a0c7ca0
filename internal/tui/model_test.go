package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/feed"
	"github.com/Iron-Ham/crewview/internal/logview"
	"github.com/Iron-Ham/crewview/internal/monitor"
	"github.com/Iron-Ham/crewview/internal/summary"
)

type fakeController struct {
	mode     logview.Mode
	toggles  int
	restarts int
}

func (c *fakeController) ToggleMode() logview.Mode {
	c.toggles++
	if c.mode == logview.ModeSummary {
		c.mode = logview.ModeComplete
	} else {
		c.mode = logview.ModeSummary
	}
	return c.mode
}

func (c *fakeController) Restart() { c.restarts++ }

func sampleState() monitor.State {
	reg := agent.NewRegistry()
	reg.SetStatus(agent.NameForecasting, agent.StatusCompleted)
	reg.SetStatus(agent.NameAvailability, agent.StatusWorking)

	conns := reg.Connections()
	states := make([]monitor.ConnectionState, len(conns))
	for i, c := range conns {
		states[i] = monitor.ConnectionState{Connection: c, Completed: reg.ConnectionCompleted(c)}
	}
	return monitor.State{
		RunID:       "run-1",
		Status:      feed.StatusRunning,
		Agents:      reg.Agents(),
		Connections: states,
		Indicator:   "Status: Running",
		Complete: []logview.Entry{
			{Agent: agent.NameForecasting, Message: "Agent: Demand Forecasting Specialist Status: Completed", Style: logview.StyleCompleted},
		},
		Summary: []summary.Entry{
			{Key: agent.KeyForecasting, DisplayName: string(agent.KeyForecasting), Description: "Forecast complete", Completion: true},
		},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func TestModelView(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  []string
	}{
		{
			name:  "wide diagram",
			width: 160,
			want:  []string{appTitle, "Status: Running", agent.NameForecasting, agent.NameResearcher, "Complete Log"},
		},
		{
			name:  "narrow fallback",
			width: 40,
			want:  []string{"Status: Running", agent.NameCommunication, "(working)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(&fakeController{}, nil)
			m, _ = update(t, m, tea.WindowSizeMsg{Width: tt.width, Height: 60})
			m, _ = update(t, m, StateMsg(sampleState()))

			view := ansi.Strip(m.View())
			for _, want := range tt.want {
				if !strings.Contains(view, want) {
					t.Errorf("View() missing %q", want)
				}
			}
		})
	}
}

func TestModelEmptyLog(t *testing.T) {
	m := New(nil, nil)
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "No activity yet") {
		t.Errorf("View() = %q, want empty-log placeholder", view)
	}
	if !strings.Contains(view, monitor.IndicatorIdle) {
		t.Errorf("View() missing idle indicator")
	}
}

func TestModelKeys(t *testing.T) {
	t.Run("toggle switches to summary", func(t *testing.T) {
		ctrl := &fakeController{}
		m := New(ctrl, nil)
		m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 60})
		m, _ = update(t, m, StateMsg(sampleState()))
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v")})

		if ctrl.toggles != 1 {
			t.Fatalf("toggles = %d, want 1", ctrl.toggles)
		}
		view := ansi.Strip(m.View())
		if !strings.Contains(view, "Summary") || !strings.Contains(view, "Forecast complete") {
			t.Errorf("summary view not rendered: %q", view)
		}
	})

	t.Run("restart", func(t *testing.T) {
		ctrl := &fakeController{}
		m := New(ctrl, nil)
		m, _ = update(t, m, RunDoneMsg{Err: errors.New("boom")})
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
		if ctrl.restarts != 1 {
			t.Errorf("restarts = %d, want 1", ctrl.restarts)
		}
		if strings.Contains(ansi.Strip(m.View()), "boom") {
			t.Error("restart should clear the previous run error")
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := New(&fakeController{}, nil)
		_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
		}
	})
}

func TestRenderDiagramConnectors(t *testing.T) {
	st := sampleState()
	out := ansi.Strip(renderDiagram(st, New(nil, nil).styles, 160))
	for _, want := range []string{"──▶", "▼", "◀", "┘"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagram missing %q:\n%s", want, out)
		}
	}
}
