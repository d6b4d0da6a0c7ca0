package feed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run: each Status call advances one step.
type Scenario struct {
	Name   string `yaml:"name"`
	Result string `yaml:"result"`
	Steps  []Step `yaml:"steps"`
}

// Step is one poll's worth of change. Lines are appended to the cumulative
// log. An empty Status means running, except on the last step where it
// means completed.
type Step struct {
	Status       RunStatus `yaml:"status"`
	Lines        []string  `yaml:"lines"`
	CurrentAgent string    `yaml:"current_agent"`
	Error        string    `yaml:"error"`
}

// ParseScenario decodes a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, errors.New("parse scenario: no steps")
	}
	return &sc, nil
}

// LoadScenario reads and decodes a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ReplaySource plays a Scenario. It is safe for concurrent use.
type ReplaySource struct {
	scenario *Scenario

	mu   sync.Mutex
	next int
	snap Snapshot
}

// NewReplaySource creates an idle source for sc.
func NewReplaySource(sc *Scenario) *ReplaySource {
	return &ReplaySource{scenario: sc, snap: Snapshot{Status: StatusIdle}}
}

// Start rewinds the scenario.
func (r *ReplaySource) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap.Status == StatusRunning {
		return ErrAlreadyRunning
	}
	r.next = 0
	r.snap = Snapshot{Status: StatusRunning, Logs: []string{}}
	return nil
}

// Status applies the next step, if any, and returns the snapshot.
func (r *ReplaySource) Status(context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snap.Status == StatusRunning && r.next < len(r.scenario.Steps) {
		r.apply(r.scenario.Steps[r.next], r.next == len(r.scenario.Steps)-1)
		r.next++
	}
	snap := r.snap.Clone()
	snap.Timestamp = float64(time.Now().UnixNano()) / 1e9
	return snap, nil
}

func (r *ReplaySource) apply(step Step, last bool) {
	r.snap.Logs = append(r.snap.Logs, step.Lines...)
	if step.CurrentAgent != "" {
		r.snap.CurrentAgent = step.CurrentAgent
	}
	status := step.Status
	if status == "" {
		status = StatusRunning
		if last {
			status = StatusCompleted
		}
	}
	r.snap.Status = status
	r.snap.Error = step.Error
	if status == StatusCompleted {
		r.snap.Result = r.scenario.Result
	}
}
