// Package event provides a synchronous pub-sub bus that decouples the
// inference core from its observers (TUI, transcript writer, logging).
//
// Event types follow the "category.action" convention:
//   - agent.status_changed: an agent moved along waiting -> working -> completed
//   - log.entry_added, summary.entry_added: the activity views grew
//   - run.started, run.finished: run boundaries
//   - feed.error: a status request failed
//
// The [Bus] is safe for concurrent use. Handlers are invoked on the
// publisher's goroutine; a panicking handler is recovered and logged so it
// cannot block delivery to the others.
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeAgentStatusChanged, func(e event.Event) {
//	    changed := e.(event.AgentStatusChangedEvent)
//	    fmt.Println(changed.AgentName, changed.To)
//	})
package event
