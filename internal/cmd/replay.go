package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/crewview/internal/feed"
	"github.com/Iron-Ham/crewview/internal/transcript"
)

var replayCmd = &cobra.Command{
	Use:   "replay [scenario.yaml]",
	Short: "Replay a scripted scenario or a recorded transcript",
	Long: `Replay a run without a backend.

A scenario file scripts the snapshots a backend would return, one step per
poll. With --transcript, the snapshots of a recorded run are applied instead.
The run is printed as plain lines.

Examples:
  crewview replay testdata/happy-path.yaml --summary
  crewview replay --transcript ~/.local/state/crewview/transcripts/<run>.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

var (
	replayTranscript string
	replaySummary    bool
	replayInterval   time.Duration
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayTranscript, "transcript", "", "transcript file to replay")
	replayCmd.Flags().BoolVar(&replaySummary, "summary", false, "print the summary view instead of the complete log")
	replayCmd.Flags().DurationVar(&replayInterval, "interval", 50*time.Millisecond, "delay between scenario steps")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	opts := sessionOptions{mode: startMode(replaySummary || cfg.Summary.StartInSummaryView)}
	printer := newPlainPrinter(cmd.OutOrStdout(), opts.mode)

	switch {
	case replayTranscript != "":
		records, err := transcript.Read(replayTranscript)
		if err != nil {
			return err
		}
		snaps := transcript.Snapshots(records)
		if len(snaps) == 0 {
			return fmt.Errorf("%s contains no snapshots", replayTranscript)
		}
		mon, err := newMonitor(nil, cfg, logger, opts)
		if err != nil {
			return err
		}
		printer.attach(mon.Bus())
		mon.Reset()
		for _, snap := range snaps {
			mon.Apply(snap)
		}
		return nil

	case len(args) == 1:
		sc, err := feed.LoadScenario(args[0])
		if err != nil {
			return err
		}
		cfg.Feed.PollIntervalMs = int(replayInterval / time.Millisecond)
		mon, err := newMonitor(feed.NewReplaySource(sc), cfg, logger, opts)
		if err != nil {
			return err
		}
		printer.attach(mon.Bus())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
	return errors.New("a scenario file or --transcript is required")
}
