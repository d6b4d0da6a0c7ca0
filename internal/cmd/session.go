package cmd

import (
	"fmt"

	"github.com/Iron-Ham/crewview/internal/config"
	"github.com/Iron-Ham/crewview/internal/event"
	"github.com/Iron-Ham/crewview/internal/feed"
	"github.com/Iron-Ham/crewview/internal/logging"
	"github.com/Iron-Ham/crewview/internal/logview"
	"github.com/Iron-Ham/crewview/internal/monitor"
	"github.com/Iron-Ham/crewview/internal/transcript"
)

// sessionOptions selects how a monitor is assembled.
type sessionOptions struct {
	mode     logview.Mode
	record   bool
	onChange func(monitor.State)
}

// newMonitor wires a monitor for source with the bus, logger, and optional
// transcript recorder configured by cfg.
func newMonitor(source feed.Source, cfg *config.Config, logger *logging.Logger, opts sessionOptions) (*monitor.Monitor, error) {
	bus := event.NewBus()
	bus.SetLogger(logger.Slog())

	mcfg := monitor.Config{
		PollInterval:        cfg.Feed.PollInterval(),
		MaxFailures:         cfg.Feed.MaxFailures,
		MaxMessagesPerAgent: cfg.Summary.MaxMessagesPerAgent,
		Mode:                opts.mode,
		Logger:              logger,
		Bus:                 bus,
		OnChange:            opts.onChange,
	}

	if opts.record {
		rec, err := transcript.NewRecorder(cfg.Transcript.ResolveDir(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up transcripts: %w", err)
		}
		rec.Attach(bus)
		mcfg.OnSnapshot = rec.Snapshot
	}
	return monitor.New(source, mcfg), nil
}

func startMode(summary bool) logview.Mode {
	if summary {
		return logview.ModeSummary
	}
	return logview.ModeComplete
}
