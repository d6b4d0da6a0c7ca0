package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/crewview/internal/config"
	"github.com/Iron-Ham/crewview/internal/event"
	"github.com/Iron-Ham/crewview/internal/feed"
	"github.com/Iron-Ham/crewview/internal/logging"
	"github.com/Iron-Ham/crewview/internal/logview"
	"github.com/Iron-Ham/crewview/internal/monitor"
	"github.com/Iron-Ham/crewview/internal/tui"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// setupTestEnvironment isolates config and state directories, viper, and
// flag values for one test.
func setupTestEnvironment(t *testing.T) (stateDir string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	stateDir = t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateDir)
	viper.Reset()
	t.Cleanup(func() {
		viper.Reset()
		resetFlags(rootCmd)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})
	return stateDir
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "crewview" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "crewview")
	}

	expectedCmds := []string{"watch", "serve", "replay", "summarize", "logs", "config"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestSummarizeCommand(t *testing.T) {
	setupTestEnvironment(t)

	logPath := filepath.Join(t.TempDir(), "crew.log")
	lines := strings.Join([]string{
		"Agent: Demand Forecasting Specialist, Status: In Progress",
		"Agent: Demand Forecasting Specialist, Status: Completed",
		"Agent: Availability Analyst, Status: In Progress",
	}, "\n")
	if err := os.WriteFile(logPath, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(rootCmd, "summarize", "--all", logPath)
	if err != nil {
		t.Fatalf("summarize failed: %v\n%s", err, output)
	}
	for _, want := range []string{
		"Complete Log",
		"Demand Forecasting Specialist: Agent: Demand Forecasting Specialist, Status: Completed",
		"Summary",
		"Forecasting",
		"Availability",
		"✓",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\n  Communication\n") {
		t.Errorf("waiting agents should not appear in the summary:\n%s", output)
	}
}

func TestSummarizeCommand_Stdin(t *testing.T) {
	setupTestEnvironment(t)
	rootCmd.SetIn(strings.NewReader("Agent: Supplier Performance Analyst, Status: In Progress\n"))

	output, err := executeCommand(rootCmd, "summarize", "-")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if !strings.Contains(output, "Performance") {
		t.Errorf("output missing Performance summary:\n%s", output)
	}
}

func TestReplayCommand(t *testing.T) {
	setupTestEnvironment(t)

	output, err := executeCommand(rootCmd, "replay", "--interval", "1ms", filepath.Join("testdata", "happy-path.yaml"))
	if err != nil {
		t.Fatalf("replay failed: %v\n%s", err, output)
	}
	for _, want := range []string{
		"== run ",
		">> Demand Forecasting Specialist: waiting -> working",
		">> Alternative Supplier Researcher: waiting -> working",
		"finished: completed",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestReplayCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no input", args: []string{"replay"}, want: "scenario file or --transcript"},
		{name: "missing scenario", args: []string{"replay", "testdata/nope.yaml"}, want: "nope.yaml"},
		{name: "missing transcript", args: []string{"replay", "--transcript", "testdata/nope.jsonl"}, want: "nope.jsonl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestEnvironment(t)
			_, err := executeCommand(rootCmd, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestServeCommand_RequiresCommand(t *testing.T) {
	setupTestEnvironment(t)
	_, err := executeCommand(rootCmd, "serve")
	if err == nil || !strings.Contains(err.Error(), "no crew command") {
		t.Errorf("error = %v, want missing command error", err)
	}
}

func TestLogsCommand(t *testing.T) {
	stateDir := setupTestEnvironment(t)
	logDir := filepath.Join(stateDir, "crewview")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatal(err)
	}
	records := `{"time":"2026-01-02T10:00:00Z","level":"INFO","msg":"starting run","run_id":"a"}
{"time":"2026-01-02T10:00:01Z","level":"WARN","msg":"status request failed","run_id":"a","failures":1}
{"time":"2026-01-02T10:00:02Z","level":"WARN","msg":"status request failed","run_id":"b","failures":1}
not json
`
	if err := os.WriteFile(filepath.Join(logDir, logging.FileName), []byte(records), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(rootCmd, "logs", "--level", "warn", "--run", "a")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if strings.Contains(output, "starting run") {
		t.Error("INFO record should be filtered by --level warn")
	}
	if strings.Count(output, "status request failed") != 1 {
		t.Errorf("expected one record for run a:\n%s", output)
	}
	if !strings.Contains(output, "failures=") || !strings.Contains(output, "not json") {
		t.Errorf("expected extra fields and raw lines:\n%s", output)
	}
}

func TestLogsCommand_NoFile(t *testing.T) {
	setupTestEnvironment(t)
	output, err := executeCommand(rootCmd, "logs")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if !strings.Contains(output, "No logs found") {
		t.Errorf("output = %q", output)
	}
}

func TestPlainPrinter(t *testing.T) {
	tests := []struct {
		name  string
		mode  logview.Mode
		event event.Event
		want  string
	}{
		{
			name:  "log entry in complete mode",
			mode:  logview.ModeComplete,
			event: event.NewLogEntryAddedEvent("System", "Crew started", logview.StyleNone),
			want:  "System: Crew started\n",
		},
		{
			name:  "log entry hidden in summary mode",
			mode:  logview.ModeSummary,
			event: event.NewLogEntryAddedEvent("System", "Crew started", logview.StyleNone),
			want:  "",
		},
		{
			name:  "summary entry",
			mode:  logview.ModeSummary,
			event: event.NewSummaryEntryAddedEvent("Forecasting", "Forecast complete", true, false),
			want:  "[Forecasting] ✓ Forecast complete\n",
		},
		{
			name:  "run finished with error",
			mode:  logview.ModeComplete,
			event: event.NewRunFinishedEvent("r1", monitor.RunStatusConnectionError, "refused"),
			want:  "== run r1 finished: connection_error (refused)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			bus := event.NewBus()
			newPlainPrinter(&buf, tt.mode).attach(bus)
			bus.Publish(tt.event)
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRunner(t *testing.T) {
	sc, err := feed.LoadScenario(filepath.Join("testdata", "happy-path.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Feed.PollIntervalMs = 1

	msgs := make(chan tea.Msg, 64)
	var r *runner
	mon, err := newMonitor(feed.NewReplaySource(sc), cfg, logging.NopLogger(), sessionOptions{
		onChange: func(st monitor.State) { r.send(tui.StateMsg(st)) },
	})
	if err != nil {
		t.Fatal(err)
	}
	r = newRunner(context.Background(), mon)
	r.send = func(m tea.Msg) {
		select {
		case msgs <- m:
		default:
		}
	}

	if got := r.ToggleMode(); got != logview.ModeSummary {
		t.Errorf("ToggleMode() = %v, want summary", got)
	}

	r.Restart()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case m := <-msgs:
			if done, ok := m.(tui.RunDoneMsg); ok {
				if done.Err != nil {
					t.Fatalf("run failed: %v", done.Err)
				}
				r.Stop()
				if st := mon.State(); st.Status != feed.StatusCompleted {
					t.Errorf("status = %s, want completed", st.Status)
				}
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for the run to finish")
		}
	}
}
