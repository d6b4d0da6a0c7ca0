package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/crewview/internal/feed"
	"github.com/Iron-Ham/crewview/internal/monitor"
	"github.com/Iron-Ham/crewview/internal/tui"
	"github.com/Iron-Ham/crewview/internal/tui/styles"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Start a crew run and follow it live",
	Long: `Start a crew run on the backend and follow it live.

The backend is asked to start a run (an already running crew is attached to),
then its status feed is polled until the run completes, fails, or the feed
stops responding.

When stdout is not a terminal, or with --plain, progress is printed as plain
lines instead of the full-screen view.

Examples:
  # Follow a run on the default backend
  crewview watch

  # Use another backend and open the summary view
  crewview watch --url http://crew.internal:5000 --summary

  # Keep a transcript for later replay
  crewview watch --record`,
	RunE: runWatch,
}

var (
	watchURL     string
	watchPlain   bool
	watchSummary bool
	watchRecord  bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchURL, "url", "", "backend base URL (default from feed.url)")
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "print plain lines instead of the full-screen view")
	watchCmd.Flags().BoolVar(&watchSummary, "summary", false, "start in the summary view")
	watchCmd.Flags().BoolVar(&watchRecord, "record", false, "write a run transcript (overrides transcript.enabled)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchURL != "" {
		cfg.Feed.URL = watchURL
		if errs := cfg.Validate(); len(errs) > 0 {
			return fmt.Errorf("invalid --url: %w", errs[0])
		}
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := feed.NewClient(cfg.Feed.URL, cfg.Feed.RequestTimeout())
	opts := sessionOptions{
		mode:   startMode(watchSummary || cfg.Summary.StartInSummaryView),
		record: watchRecord || cfg.Transcript.Enabled,
	}
	logger.Info("watching crew", "url", cfg.Feed.URL, "mode", opts.mode.String())

	if watchPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		mon, err := newMonitor(client, cfg, logger, opts)
		if err != nil {
			return err
		}
		newPlainPrinter(cmd.OutOrStdout(), opts.mode).attach(mon.Bus())
		return ignoreCanceled(mon.Run(ctx))
	}

	var r *runner
	opts.onChange = func(st monitor.State) { r.send(tui.StateMsg(st)) }
	mon, err := newMonitor(client, cfg, logger, opts)
	if err != nil {
		return err
	}
	r = newRunner(ctx, mon)

	p := tui.NewProgram(tui.New(r, styles.ForTheme(cfg.TUI.Theme)), tea.WithContext(ctx))
	r.send = p.Send
	r.Restart()
	_, err = p.Run()
	r.Stop()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
