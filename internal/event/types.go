package event

import (
	"time"

	"github.com/Iron-Ham/crewview/internal/agent"
)

// Event is the interface that all events implement.
type Event interface {
	// EventType returns the "category.action" identifier of the event.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeAgentStatusChanged = "agent.status_changed"
	TypeLogEntryAdded      = "log.entry_added"
	TypeSummaryEntryAdded  = "summary.entry_added"
	TypeRunStarted         = "run.started"
	TypeRunFinished        = "run.finished"
	TypeFeedError          = "feed.error"
)

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Agent Events
// -----------------------------------------------------------------------------

// AgentStatusChangedEvent is emitted for every accepted state transition.
type AgentStatusChangedEvent struct {
	baseEvent
	AgentID   string
	AgentName string
	From      agent.Status
	To        agent.Status
}

// NewAgentStatusChangedEvent creates an AgentStatusChangedEvent.
func NewAgentStatusChangedEvent(agentID, agentName string, from, to agent.Status) AgentStatusChangedEvent {
	return AgentStatusChangedEvent{
		baseEvent: newBaseEvent(TypeAgentStatusChanged),
		AgentID:   agentID,
		AgentName: agentName,
		From:      from,
		To:        to,
	}
}

// -----------------------------------------------------------------------------
// Activity Events
// -----------------------------------------------------------------------------

// LogEntryAddedEvent is emitted when a line is appended to the complete log.
type LogEntryAddedEvent struct {
	baseEvent
	Agent   string
	Message string
	Style   string
}

// NewLogEntryAddedEvent creates a LogEntryAddedEvent.
func NewLogEntryAddedEvent(agentName, message, style string) LogEntryAddedEvent {
	return LogEntryAddedEvent{
		baseEvent: newBaseEvent(TypeLogEntryAdded),
		Agent:     agentName,
		Message:   message,
		Style:     style,
	}
}

// SummaryEntryAddedEvent is emitted when the summarizer accepts a line or
// synthesizes a closing entry.
type SummaryEntryAddedEvent struct {
	baseEvent
	Key         agent.Key
	Description string
	Completion  bool
	Synthesized bool
}

// NewSummaryEntryAddedEvent creates a SummaryEntryAddedEvent.
func NewSummaryEntryAddedEvent(key agent.Key, description string, completion, synthesized bool) SummaryEntryAddedEvent {
	return SummaryEntryAddedEvent{
		baseEvent:   newBaseEvent(TypeSummaryEntryAdded),
		Key:         key,
		Description: description,
		Completion:  completion,
		Synthesized: synthesized,
	}
}

// -----------------------------------------------------------------------------
// Run Events
// -----------------------------------------------------------------------------

// RunStartedEvent is emitted when the monitor starts a new run.
type RunStartedEvent struct {
	baseEvent
	RunID string
}

// NewRunStartedEvent creates a RunStartedEvent.
func NewRunStartedEvent(runID string) RunStartedEvent {
	return RunStartedEvent{
		baseEvent: newBaseEvent(TypeRunStarted),
		RunID:     runID,
	}
}

// RunFinishedEvent is emitted when polling stops, whether the run completed,
// failed, or the feed became unreachable.
type RunFinishedEvent struct {
	baseEvent
	RunID  string
	Status string // terminal run status, or "connection_error"
	Error  string // run-reported or transport error, if any
}

// NewRunFinishedEvent creates a RunFinishedEvent.
func NewRunFinishedEvent(runID, status, errMsg string) RunFinishedEvent {
	return RunFinishedEvent{
		baseEvent: newBaseEvent(TypeRunFinished),
		RunID:     runID,
		Status:    status,
		Error:     errMsg,
	}
}

// FeedErrorEvent is emitted for each failed status request.
type FeedErrorEvent struct {
	baseEvent
	Failures int // consecutive failures so far
	Error    string
}

// NewFeedErrorEvent creates a FeedErrorEvent.
func NewFeedErrorEvent(failures int, errMsg string) FeedErrorEvent {
	return FeedErrorEvent{
		baseEvent: newBaseEvent(TypeFeedError),
		Failures:  failures,
		Error:     errMsg,
	}
}
