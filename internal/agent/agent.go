// Package agent defines the fixed crew of supplier-analysis agents, the
// directed workflow edges between them, and the display order used by the
// condensed activity view.
package agent

import "sync"

// Status is an agent's lifecycle state.
// Transitions are monotonic: waiting -> working -> completed.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusWorking   Status = "working"
	StatusCompleted Status = "completed"
)

// rank orders statuses for monotonicity checks.
func (s Status) rank() int {
	switch s {
	case StatusWorking:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 0
	}
}

// Before reports whether s precedes other in the lifecycle.
func (s Status) Before(other Status) bool {
	return s.rank() < other.rank()
}

// Key is the short summary-view key of an agent.
type Key string

const (
	KeyForecasting   Key = "Forecasting"
	KeyAvailability  Key = "Availability"
	KeyAltSupplier   Key = "Alt. Supplier"
	KeyPerformance   Key = "Performance"
	KeyCommunication Key = "Communication"
)

// Canonical agent names as they appear in the crew's output.
const (
	NameForecasting   = "Demand Forecasting Specialist"
	NameAvailability  = "Availability Analyst"
	NameResearcher    = "Alternative Supplier Researcher"
	NamePerformance   = "Supplier Performance Analyst"
	NameCommunication = "Communication Specialist"
)

// WorkflowSequence is the fixed display order of the condensed view.
var WorkflowSequence = []Key{
	KeyForecasting,
	KeyAvailability,
	KeyAltSupplier,
	KeyPerformance,
	KeyCommunication,
}

// Position is a diagram coordinate. It only matters to the presentation layer.
type Position struct {
	Col int
	Row int
}

// Agent is one workflow participant.
type Agent struct {
	ID       string
	Name     string
	Role     string
	Key      Key
	Position Position
	Status   Status
}

// Connection is a directed workflow edge.
type Connection struct {
	From string
	To   string
}

func definitions() []Agent {
	return []Agent{
		{ID: "demand-forecasting", Name: NameForecasting, Role: "Forecast demand and recommend reorder quantities", Key: KeyForecasting, Position: Position{Col: 0, Row: 0}},
		{ID: "availability-analyst", Name: NameAvailability, Role: "Analyze supplier availability", Key: KeyAvailability, Position: Position{Col: 0, Row: 1}},
		{ID: "researcher", Name: NameResearcher, Role: "Find alternative suppliers", Key: KeyAltSupplier, Position: Position{Col: 1, Row: 1}},
		{ID: "performance-analyst", Name: NamePerformance, Role: "Rank suppliers based on performance metrics", Key: KeyPerformance, Position: Position{Col: 0, Row: 2}},
		{ID: "communication", Name: NameCommunication, Role: "Summarize findings and communicate results", Key: KeyCommunication, Position: Position{Col: 0, Row: 3}},
	}
}

var connections = []Connection{
	{From: "demand-forecasting", To: "availability-analyst"},
	{From: "availability-analyst", To: "researcher"},
	{From: "availability-analyst", To: "performance-analyst"},
	{From: "researcher", To: "performance-analyst"},
	{From: "performance-analyst", To: "communication"},
}

// Names returns the canonical agent names in registry order.
func Names() []string {
	defs := definitions()
	names := make([]string, len(defs))
	for i, a := range defs {
		names[i] = a.Name
	}
	return names
}

// Registry owns the agent records of one workflow instance.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents []Agent
}

// NewRegistry creates a registry with every agent waiting.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset puts every agent back to waiting. Called when a new run starts.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents = definitions()
	for i := range r.agents {
		r.agents[i].Status = StatusWaiting
	}
}

// Agents returns a copy of all agents in registry order.
func (r *Registry) Agents() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Agent, len(r.agents))
	copy(out, r.agents)
	return out
}

// Connections returns the workflow edges.
func (r *Registry) Connections() []Connection {
	out := make([]Connection, len(connections))
	copy(out, connections)
	return out
}

// ByID looks up an agent by its stable ID.
func (r *Registry) ByID(id string) (Agent, bool) {
	return r.find(func(a Agent) bool { return a.ID == id })
}

// ByName looks up an agent by exact canonical name.
func (r *Registry) ByName(name string) (Agent, bool) {
	return r.find(func(a Agent) bool { return a.Name == name })
}

// ByKey looks up an agent by its summary key.
func (r *Registry) ByKey(key Key) (Agent, bool) {
	return r.find(func(a Agent) bool { return a.Key == key })
}

func (r *Registry) find(pred func(Agent) bool) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.agents {
		if pred(a) {
			return a, true
		}
	}
	return Agent{}, false
}

// StatusOf returns the status for a summary key, or waiting if unknown.
func (r *Registry) StatusOf(key Key) Status {
	if a, ok := r.ByKey(key); ok {
		return a.Status
	}
	return StatusWaiting
}

// SetStatus overwrites an agent's status and returns the previous one.
// Only the workflow state machine should call this; it enforces monotonicity.
func (r *Registry) SetStatus(name string, status Status) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.agents {
		if r.agents[i].Name == name {
			prev := r.agents[i].Status
			r.agents[i].Status = status
			return prev, true
		}
	}
	return "", false
}

// ConnectionCompleted reports whether an edge's source agent has completed.
func (r *Registry) ConnectionCompleted(c Connection) bool {
	a, ok := r.ByID(c.From)
	return ok && a.Status == StatusCompleted
}

// KeyOf returns the summary key of a canonical agent name.
func KeyOf(name string) (Key, bool) {
	for _, a := range definitions() {
		if a.Name == name {
			return a.Key, true
		}
	}
	return "", false
}
