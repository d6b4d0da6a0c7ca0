package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/Iron-Ham/crewview/internal/event"
	"github.com/Iron-Ham/crewview/internal/logview"
)

// plainPrinter writes monitor events as plain lines, for pipes and
// terminals without full-screen support.
type plainPrinter struct {
	mu   sync.Mutex
	out  io.Writer
	mode logview.Mode
}

func newPlainPrinter(out io.Writer, mode logview.Mode) *plainPrinter {
	return &plainPrinter{out: out, mode: mode}
}

// attach subscribes the printer to every event on bus.
func (p *plainPrinter) attach(bus *event.Bus) string {
	return bus.SubscribeAll(p.handle)
}

func (p *plainPrinter) handle(e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := e.(type) {
	case event.RunStartedEvent:
		fmt.Fprintf(p.out, "== run %s started\n", e.RunID)
	case event.AgentStatusChangedEvent:
		fmt.Fprintf(p.out, ">> %s: %s -> %s\n", e.AgentName, e.From, e.To)
	case event.LogEntryAddedEvent:
		if p.mode == logview.ModeComplete {
			fmt.Fprintf(p.out, "%s: %s\n", e.Agent, e.Message)
		}
	case event.SummaryEntryAddedEvent:
		if p.mode == logview.ModeSummary {
			mark := "•"
			if e.Completion {
				mark = "✓"
			}
			fmt.Fprintf(p.out, "[%s] %s %s\n", e.Key, mark, e.Description)
		}
	case event.FeedErrorEvent:
		fmt.Fprintf(p.out, "!! status request failed (%d): %s\n", e.Failures, e.Error)
	case event.RunFinishedEvent:
		if e.Error != "" {
			fmt.Fprintf(p.out, "== run %s finished: %s (%s)\n", e.RunID, e.Status, e.Error)
		} else {
			fmt.Fprintf(p.out, "== run %s finished: %s\n", e.RunID, e.Status)
		}
	}
}
