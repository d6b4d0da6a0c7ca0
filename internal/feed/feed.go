// Package feed defines the status-feed contract consumed by the monitor and
// provides its implementations: an HTTP client for a remote backend, a local
// source that runs the crew under a pseudo-terminal, and a scripted replay
// source.
package feed

import (
	"context"
	"errors"
	"slices"
)

// RunStatus is the lifecycle state reported by the backend.
type RunStatus string

const (
	StatusIdle      RunStatus = "idle"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusError     RunStatus = "error"
)

// Snapshot is the full status document returned on every poll.
// Logs is cumulative and append-only within a run.
type Snapshot struct {
	Status       RunStatus `json:"status" yaml:"status"`
	CurrentAgent string    `json:"current_agent,omitempty" yaml:"current_agent,omitempty"`
	Logs         []string  `json:"logs" yaml:"logs"`
	Result       string    `json:"result,omitempty" yaml:"result,omitempty"`
	Error        string    `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp    float64   `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	s.Logs = slices.Clone(s.Logs)
	return s
}

// Source starts runs and serves status snapshots.
type Source interface {
	// Start begins a new run. It returns ErrAlreadyRunning if a run is in
	// progress.
	Start(ctx context.Context) error
	// Status returns the current snapshot.
	Status(ctx context.Context) (Snapshot, error)
}

// ErrAlreadyRunning is returned by Start while a run is in progress.
var ErrAlreadyRunning = errors.New("process is already running")
