// Package workflow owns agent state transitions. It is the only writer of
// agent status in the registry.
package workflow

import (
	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/detect"
	"github.com/Iron-Ham/crewview/internal/event"
)

// Machine applies inferred labels to the registry, enforcing the monotonic
// waiting -> working -> completed lifecycle.
type Machine struct {
	registry *agent.Registry
	bus      *event.Bus
}

// NewMachine creates a state machine over registry. bus may be nil.
func NewMachine(registry *agent.Registry, bus *event.Bus) *Machine {
	return &Machine{registry: registry, bus: bus}
}

// Apply requests that the named agent move to the status a label implies.
// It reports whether a transition happened. Unknown agents, no-op labels,
// same-state requests, and anything after completed are rejected silently.
func (m *Machine) Apply(name string, label detect.Label) bool {
	target := label.Status()
	if target == agent.StatusWaiting {
		return false
	}
	a, ok := m.registry.ByName(name)
	if !ok {
		return false
	}
	if a.Status == target || !a.Status.Before(target) {
		return false
	}
	prev, ok := m.registry.SetStatus(name, target)
	if !ok {
		return false
	}
	m.publish(a, prev, target)
	return true
}

// ApplyMatches applies every match in order and returns how many changed
// state.
func (m *Machine) ApplyMatches(matches []detect.Match) int {
	changed := 0
	for _, match := range matches {
		if m.Apply(match.Agent, match.Label) {
			changed++
		}
	}
	return changed
}

// Sweep forces every working agent to completed. Called once the run
// reports completion.
func (m *Machine) Sweep() int {
	changed := 0
	for _, a := range m.registry.Agents() {
		if a.Status == agent.StatusWorking && m.Apply(a.Name, detect.LabelCompleted) {
			changed++
		}
	}
	return changed
}

func (m *Machine) publish(a agent.Agent, from, to agent.Status) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(event.NewAgentStatusChangedEvent(a.ID, a.Name, from, to))
}
