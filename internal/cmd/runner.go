package cmd

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/crewview/internal/logview"
	"github.com/Iron-Ham/crewview/internal/monitor"
	"github.com/Iron-Ham/crewview/internal/tui"
)

// runner drives monitor runs for the TUI. A restart cancels the run in
// flight and starts the next one once the previous has returned.
type runner struct {
	ctx  context.Context
	mon  *monitor.Monitor
	send func(tea.Msg)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	wg     conc.WaitGroup
}

var _ tui.Controller = (*runner)(nil)

func newRunner(ctx context.Context, mon *monitor.Monitor) *runner {
	return &runner{ctx: ctx, mon: mon, send: func(tea.Msg) {}}
}

// ToggleMode implements tui.Controller.
func (r *runner) ToggleMode() logview.Mode {
	return r.mon.ToggleMode()
}

// Restart implements tui.Controller.
func (r *runner) Restart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(r.ctx)
	prev, done := r.done, make(chan struct{})
	r.cancel, r.done = cancel, done

	r.wg.Go(func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		err := r.mon.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}
		r.send(tui.RunDoneMsg{Err: err})
	})
}

// Stop cancels the current run and waits for every run goroutine.
func (r *runner) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
