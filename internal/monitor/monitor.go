// Package monitor consumes status snapshots from a feed source and drives
// the inference core: it classifies log lines, advances agent states, and
// grows the complete and summary views. Each snapshot's logs are cumulative;
// only the suffix not seen by a previous poll is fed to the views.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/detect"
	"github.com/Iron-Ham/crewview/internal/event"
	"github.com/Iron-Ham/crewview/internal/feed"
	"github.com/Iron-Ham/crewview/internal/logging"
	"github.com/Iron-Ham/crewview/internal/logview"
	"github.com/Iron-Ham/crewview/internal/summary"
	"github.com/Iron-Ham/crewview/internal/workflow"
)

// Defaults for Config fields left zero.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxFailures  = 3
)

// Indicator texts not derived from a run status.
const (
	IndicatorIdle            = "Status: Idle"
	IndicatorConnectionError = "Status: Connection Error"
)

// RunStatusConnectionError is the run.finished status published when
// polling gives up.
const RunStatusConnectionError = "connection_error"

// ErrPollingStopped is returned by Poll when consecutive transport failures
// reach the configured threshold.
var ErrPollingStopped = errors.New("polling stopped after repeated failures")

// Config tunes a Monitor.
type Config struct {
	PollInterval        time.Duration
	MaxFailures         int
	MaxMessagesPerAgent int
	Mode                logview.Mode
	Logger              *logging.Logger
	Bus                 *event.Bus
	// OnSnapshot is called with every snapshot before it is applied.
	OnSnapshot func(runID string, snap feed.Snapshot)
	// OnChange is called with a fresh State after every poll.
	OnChange func(State)
}

// ConnectionState is a workflow edge with its rendering state.
type ConnectionState struct {
	agent.Connection
	Completed bool
}

// State is an immutable copy of everything the presentation layer draws.
type State struct {
	RunID       string
	Status      feed.RunStatus
	Agents      []agent.Agent
	Connections []ConnectionState
	Indicator   string
	Complete    []logview.Entry
	Summary     []summary.Entry
	Mode        logview.Mode
	Result      string
	Error       string
	Polling     bool
}

// Monitor owns one workflow instance and the run currently displayed.
type Monitor struct {
	source     feed.Source
	cfg        Config
	logger     *logging.Logger
	bus        *event.Bus
	registry   *agent.Registry
	machine    *workflow.Machine
	classifier *detect.Classifier
	view       *logview.View
	title      cases.Caser

	mu        sync.Mutex
	runID     string
	run       *summary.RunContext
	prior     int
	status    feed.RunStatus
	indicator string
	result    string
	errMsg    string
	failures  int
	polling   bool
	finished  bool
}

// New creates a monitor reading from source.
func New(source feed.Source, cfg Config) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultMaxFailures
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}
	if cfg.Bus == nil {
		cfg.Bus = event.NewBus()
	}
	registry := agent.NewRegistry()
	return &Monitor{
		source:     source,
		cfg:        cfg,
		logger:     cfg.Logger.WithComponent("monitor"),
		bus:        cfg.Bus,
		registry:   registry,
		machine:    workflow.NewMachine(registry, cfg.Bus),
		classifier: detect.NewClassifier(),
		view:       logview.NewView(cfg.Mode),
		title:      cases.Title(language.English),
		run:        summary.NewRunContext(cfg.MaxMessagesPerAgent),
		status:     feed.StatusIdle,
		indicator:  IndicatorIdle,
	}
}

// Bus returns the event bus the monitor publishes on.
func (m *Monitor) Bus() *event.Bus { return m.bus }

// Reset discards the current run and puts every agent back to waiting.
// It returns the new run's ID.
func (m *Monitor) Reset() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry.Reset()
	m.view.Reset()
	m.run = summary.NewRunContext(m.cfg.MaxMessagesPerAgent)
	m.runID = uuid.NewString()
	m.prior = 0
	m.status = feed.StatusIdle
	m.indicator = IndicatorIdle
	m.result = ""
	m.errMsg = ""
	m.failures = 0
	m.finished = false
	return m.runID
}

// Start resets the run and asks the source to begin. A source that is
// already running is attached to rather than treated as a failure.
func (m *Monitor) Start(ctx context.Context) error {
	runID := m.Reset()
	m.logger.WithRun(runID).Info("starting run")

	if err := m.source.Start(ctx); err != nil {
		if !errors.Is(err, feed.ErrAlreadyRunning) {
			m.mu.Lock()
			m.indicator = "Status: Error"
			m.errMsg = err.Error()
			m.mu.Unlock()
			return fmt.Errorf("failed to start run: %w", err)
		}
		m.logger.WithRun(runID).Warn("run already in progress, attaching")
	}

	m.mu.Lock()
	m.status = feed.StatusRunning
	m.indicator = m.indicatorFor(feed.StatusRunning)
	m.mu.Unlock()
	m.bus.Publish(event.NewRunStartedEvent(runID))
	return nil
}

// Run starts a run and polls until it finishes, ctx is done, or the
// failure threshold is reached.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		m.notify()
		return err
	}
	m.notify()
	return m.Poll(ctx)
}

// Poll requests a snapshot every poll interval and applies it. It returns
// nil once the run is no longer running, ctx.Err() on cancellation, and
// ErrPollingStopped after MaxFailures consecutive request failures.
func (m *Monitor) Poll(ctx context.Context) error {
	m.setPolling(true)
	defer func() {
		m.setPolling(false)
		m.notify()
	}()

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		done, err := m.pollOnce(ctx)
		if err != nil || done {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Monitor) pollOnce(ctx context.Context) (bool, error) {
	snap, err := m.source.Status(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		return m.recordFailure(err)
	}

	m.mu.Lock()
	m.failures = 0
	runID := m.runID
	m.mu.Unlock()

	if m.cfg.OnSnapshot != nil {
		m.cfg.OnSnapshot(runID, snap)
	}
	running := m.Apply(snap)
	m.notify()
	return !running, nil
}

func (m *Monitor) recordFailure(err error) (bool, error) {
	m.mu.Lock()
	m.failures++
	failures := m.failures
	stop := failures >= m.cfg.MaxFailures
	if stop {
		m.indicator = IndicatorConnectionError
	}
	runID := m.runID
	m.mu.Unlock()

	m.logger.WithRun(runID).Warn("status request failed", "failures", failures, "error", err)
	m.bus.Publish(event.NewFeedErrorEvent(failures, err.Error()))
	if stop {
		m.logger.WithRun(runID).Error("polling stopped", "failures", failures)
		m.bus.Publish(event.NewRunFinishedEvent(runID, RunStatusConnectionError, err.Error()))
		return true, fmt.Errorf("%w: %w", ErrPollingStopped, err)
	}
	m.notify()
	return false, nil
}

// Apply consumes one snapshot and reports whether the run is still
// running. Replaying a snapshot already applied changes nothing. Events are
// published while the monitor's lock is held; handlers must not call back
// into the Monitor.
func (m *Monitor) Apply(snap feed.Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := m.logger.WithRun(m.runID)

	m.machine.ApplyMatches(m.classifier.ClassifySnapshot(snap.Logs))
	for _, line := range snap.Logs {
		m.machine.ApplyMatches(m.classifier.Classify(line))
	}
	if d, ok := detect.ParseDirective(snap.CurrentAgent); ok {
		m.machine.Apply(d.Agent, d.Label)
	}

	if len(snap.Logs) < m.prior {
		logger.Warn("snapshot logs shrank, ignoring", "prior", m.prior, "logs", len(snap.Logs))
	} else {
		for _, line := range snap.Logs[m.prior:] {
			m.ingest(line, logger)
		}
		m.prior = len(snap.Logs)
	}

	m.status = snap.Status
	m.result = snap.Result
	m.errMsg = snap.Error
	m.indicator = m.indicatorFor(snap.Status)

	if snap.Status == feed.StatusRunning {
		return true
	}
	if !m.finished {
		m.finish(snap, logger)
	}
	return false
}

func (m *Monitor) ingest(line string, logger *logging.Logger) {
	if e, ok := m.view.Append(line); ok {
		m.bus.Publish(event.NewLogEntryAddedEvent(e.Agent, e.Message, e.Style))
	}
	if e, ok := m.run.Consider(line); ok {
		logger.Debug("summary entry accepted", "key", string(e.Key), "fingerprint", e.Fingerprint)
		m.bus.Publish(event.NewSummaryEntryAddedEvent(e.Key, e.Description, e.Completion, false))
	}
}

func (m *Monitor) finish(snap feed.Snapshot, logger *logging.Logger) {
	m.finished = true
	if snap.Status == feed.StatusCompleted {
		swept := m.machine.Sweep()
		synthesized := m.run.Synthesize()
		for _, e := range synthesized {
			m.bus.Publish(event.NewSummaryEntryAddedEvent(e.Key, e.Description, e.Completion, true))
		}
		logger.Info("run completed", "swept", swept, "synthesized", len(synthesized))
	} else {
		logger.Warn("run ended", "status", string(snap.Status), "error", snap.Error)
	}
	m.bus.Publish(event.NewRunFinishedEvent(m.runID, string(snap.Status), snap.Error))
}

func (m *Monitor) indicatorFor(status feed.RunStatus) string {
	if status == "" {
		status = feed.StatusIdle
	}
	return "Status: " + m.title.String(string(status))
}

// ToggleMode flips the activity view mode and returns the new mode.
func (m *Monitor) ToggleMode() logview.Mode {
	return m.view.Toggle()
}

// State returns a copy of the current display state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns := m.registry.Connections()
	states := make([]ConnectionState, len(conns))
	for i, c := range conns {
		states[i] = ConnectionState{Connection: c, Completed: m.registry.ConnectionCompleted(c)}
	}
	return State{
		RunID:       m.runID,
		Status:      m.status,
		Agents:      m.registry.Agents(),
		Connections: states,
		Indicator:   m.indicator,
		Complete:    m.view.Complete(),
		Summary:     logview.Condensed(m.run.Entries(), m.registry.StatusOf),
		Mode:        m.view.Mode(),
		Result:      m.result,
		Error:       m.errMsg,
		Polling:     m.polling,
	}
}

func (m *Monitor) setPolling(v bool) {
	m.mu.Lock()
	m.polling = v
	m.mu.Unlock()
}

func (m *Monitor) notify() {
	if m.cfg.OnChange != nil {
		m.cfg.OnChange(m.State())
	}
}
