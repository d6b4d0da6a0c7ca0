package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/crewview/internal/logging"
)

// ExecSource runs the crew command locally under a pseudo-terminal and
// builds snapshots from its output. A pty is used so the crew keeps its
// interactive tree rendering and flushes line by line.
type ExecSource struct {
	command   []string
	dir       string
	emailPath string
	logger    *logging.Logger

	mu      sync.Mutex
	capture *Capture
	snap    Snapshot
	cancel  context.CancelFunc
	done    chan struct{}
}

// ExecOption configures an ExecSource.
type ExecOption func(*ExecSource)

// WithDir sets the command's working directory.
func WithDir(dir string) ExecOption {
	return func(s *ExecSource) { s.dir = dir }
}

// WithEmailArtifact watches path for the email the crew writes on success.
func WithEmailArtifact(path string) ExecOption {
	return func(s *ExecSource) { s.emailPath = path }
}

// WithLogger sets the source's logger.
func WithLogger(l *logging.Logger) ExecOption {
	return func(s *ExecSource) { s.logger = l }
}

// NewExecSource creates a source for command (argv form).
func NewExecSource(command []string, opts ...ExecOption) *ExecSource {
	s := &ExecSource{
		command: command,
		logger:  logging.NopLogger(),
		capture: NewCapture(),
		snap:    Snapshot{Status: StatusIdle},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start launches the command. The run outlives ctx's cancellation; use Stop
// to terminate it.
func (s *ExecSource) Start(ctx context.Context) error {
	if len(s.command) == 0 {
		return errors.New("no crew command configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status == StatusRunning {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cmd := exec.CommandContext(runCtx, s.command[0], s.command[1:]...)
	cmd.Dir = s.dir

	ptmx, err := pty.Start(cmd)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start crew command: %w", err)
	}

	s.capture = NewCapture()
	s.snap = Snapshot{Status: StatusRunning, Logs: []string{}}
	s.cancel = cancel
	s.done = make(chan struct{})
	s.logger.Info("crew command started", "command", s.command, "pid", cmd.Process.Pid)

	var readers conc.WaitGroup
	readers.Go(func() {
		sc := bufio.NewScanner(ptmx)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			s.ingest(sc.Text())
		}
	})

	var watchers conc.WaitGroup
	watchCtx, stopWatch := context.WithCancel(runCtx)
	if s.emailPath != "" {
		watchers.Go(func() {
			if err := WatchEmail(watchCtx, s.emailPath, s.appendLines); err != nil {
				s.logger.Warn("email watcher stopped", "error", err)
			}
		})
	}

	done := s.done
	go func() {
		defer close(done)
		// The pty read ends with EIO once the child exits.
		readers.Wait()
		waitErr := cmd.Wait()
		_ = ptmx.Close()
		stopWatch()
		watchers.Wait()
		s.finish(waitErr)
	}()
	return nil
}

// Stop terminates a running command and waits for the source to settle.
func (s *ExecSource) Stop(timeout time.Duration) {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

// Done is closed when the current run has finished.
func (s *ExecSource) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Status returns the current snapshot.
func (s *ExecSource) Status(context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap.Clone()
	snap.Timestamp = float64(time.Now().UnixNano()) / 1e9
	return snap, nil
}

func (s *ExecSource) ingest(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capture.Feed(line)
	s.sync()
}

func (s *ExecSource) appendLines(lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range lines {
		s.capture.Append(l)
	}
	s.sync()
}

// sync copies capture state into the snapshot. mu must be held.
func (s *ExecSource) sync() {
	s.snap.Logs = s.capture.Logs()
	s.snap.CurrentAgent = s.capture.CurrentAgent()
}

func (s *ExecSource) finish(waitErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capture.Flush()
	s.sync()
	s.cancel = nil

	if waitErr != nil {
		s.snap.Status = StatusError
		s.snap.Error = waitErr.Error()
		s.snap.Result = "Error: " + waitErr.Error()
		s.logger.Error("crew command failed", "error", waitErr)
		return
	}
	s.snap.Status = StatusCompleted
	if s.snap.Result == "" {
		s.snap.Result = "Analysis completed successfully."
	}
	s.logger.Info("crew command finished", "lines", len(s.snap.Logs))
}
