package event

import (
	"sync"
	"testing"

	"github.com/Iron-Ham/crewview/internal/agent"
)

func TestBus_PublishSpecific(t *testing.T) {
	bus := NewBus()

	var got AgentStatusChangedEvent
	bus.Subscribe(TypeAgentStatusChanged, func(e Event) {
		got = e.(AgentStatusChangedEvent)
	})

	bus.Publish(NewAgentStatusChangedEvent("researcher", agent.NameResearcher, agent.StatusWaiting, agent.StatusWorking))

	if got.AgentID != "researcher" {
		t.Fatalf("AgentID = %q, want researcher", got.AgentID)
	}
	if got.From != agent.StatusWaiting || got.To != agent.StatusWorking {
		t.Errorf("transition = %s -> %s", got.From, got.To)
	}
	if got.Timestamp().IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestBus_NoMatchingHandlers(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(TypeRunStarted, func(e Event) {
		t.Error("handler should not be called for a different event type")
	})
	bus.Publish(NewFeedErrorEvent(1, "boom"))
}

func TestBus_SpecificBeforeWildcard(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "all:"+e.EventType()) })
	bus.Subscribe(TypeRunFinished, func(e Event) { order = append(order, "specific:"+e.EventType()) })

	bus.Publish(NewRunFinishedEvent("run-1", "completed", ""))

	want := []string{"specific:run.finished", "all:run.finished"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := make(map[string]int)
	id1 := bus.Subscribe(TypeLogEntryAdded, func(e Event) { calls["first"]++ })
	bus.Subscribe(TypeLogEntryAdded, func(e Event) { calls["second"]++ })

	if !bus.Unsubscribe(id1) {
		t.Fatal("Unsubscribe should return true for a known ID")
	}
	if bus.Unsubscribe(id1) {
		t.Error("Unsubscribe should return false the second time")
	}

	bus.Publish(NewLogEntryAddedEvent("System", "hello", ""))

	if calls["first"] != 0 || calls["second"] != 1 {
		t.Errorf("calls = %v", calls)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(TypeRunStarted, func(e Event) {})
	bus.SubscribeAll(func(e Event) {})

	if bus.SubscriptionCount() != 2 {
		t.Fatalf("SubscriptionCount() = %d, want 2", bus.SubscriptionCount())
	}
	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() after Clear = %d", bus.SubscriptionCount())
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	bus := NewBus()
	bus.SetLogger(nil) // ignored

	calls := 0
	bus.Subscribe(TypeSummaryEntryAdded, func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe(TypeSummaryEntryAdded, func(e Event) {
		calls++
	})

	bus.Publish(NewSummaryEntryAddedEvent(agent.KeyForecasting, "Analyzing demand data", false, false))

	if calls != 2 {
		t.Errorf("expected both handlers to run despite panic, got %d calls", calls)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(TypeFeedError, func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Go(func() {
			bus.Publish(NewFeedErrorEvent(i, "timeout"))
		})
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("expected 100 calls, got %d", calls)
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus()

	ids := make(map[string]bool)
	for range 100 {
		id := bus.Subscribe(TypeRunStarted, func(e Event) {})
		if ids[id] {
			t.Errorf("duplicate subscription ID: %s", id)
		}
		ids[id] = true
	}
}
