package workflow

import (
	"testing"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/detect"
	"github.com/Iron-Ham/crewview/internal/event"
)

func TestMachine_Apply(t *testing.T) {
	tests := []struct {
		name    string
		initial []detect.Label
		label   detect.Label
		want    bool
		final   agent.Status
	}{
		{"waiting to working", nil, detect.LabelWorking, true, agent.StatusWorking},
		{"waiting to completed", nil, detect.LabelCompleted, true, agent.StatusCompleted},
		{"working to completed", []detect.Label{detect.LabelWorking}, detect.LabelCompleted, true, agent.StatusCompleted},
		{"working to working", []detect.Label{detect.LabelWorking}, detect.LabelWorking, false, agent.StatusWorking},
		{"completed to working", []detect.Label{detect.LabelCompleted}, detect.LabelWorking, false, agent.StatusCompleted},
		{"completed to completed", []detect.Label{detect.LabelCompleted}, detect.LabelCompleted, false, agent.StatusCompleted},
		{"no label", nil, detect.LabelNone, false, agent.StatusWaiting},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := agent.NewRegistry()
			m := NewMachine(reg, nil)
			for _, l := range tc.initial {
				m.Apply(agent.NameAvailability, l)
			}

			if got := m.Apply(agent.NameAvailability, tc.label); got != tc.want {
				t.Errorf("Apply() = %v, want %v", got, tc.want)
			}
			a, _ := reg.ByName(agent.NameAvailability)
			if a.Status != tc.final {
				t.Errorf("status = %q, want %q", a.Status, tc.final)
			}
		})
	}
}

func TestMachine_Apply_UnknownAgent(t *testing.T) {
	m := NewMachine(agent.NewRegistry(), nil)
	if m.Apply("Chief Vibes Officer", detect.LabelWorking) {
		t.Error("Apply() should reject unknown agents")
	}
}

func TestMachine_PublishesTransitions(t *testing.T) {
	bus := event.NewBus()
	var got []event.AgentStatusChangedEvent
	bus.Subscribe(event.TypeAgentStatusChanged, func(e event.Event) {
		got = append(got, e.(event.AgentStatusChangedEvent))
	})

	m := NewMachine(agent.NewRegistry(), bus)
	m.Apply(agent.NameForecasting, detect.LabelWorking)
	m.Apply(agent.NameForecasting, detect.LabelWorking)
	m.Apply(agent.NameForecasting, detect.LabelCompleted)

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].AgentID != "demand-forecasting" || got[0].From != agent.StatusWaiting || got[0].To != agent.StatusWorking {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].From != agent.StatusWorking || got[1].To != agent.StatusCompleted {
		t.Errorf("second event = %+v", got[1])
	}
}

func TestMachine_ApplyMatches_Idempotent(t *testing.T) {
	reg := agent.NewRegistry()
	m := NewMachine(reg, nil)
	matches := []detect.Match{
		{Agent: agent.NameForecasting, Label: detect.LabelCompleted},
		{Agent: agent.NameAvailability, Label: detect.LabelWorking},
	}

	if n := m.ApplyMatches(matches); n != 2 {
		t.Fatalf("first ApplyMatches() = %d, want 2", n)
	}
	before := reg.Agents()
	if n := m.ApplyMatches(matches); n != 0 {
		t.Errorf("replayed ApplyMatches() = %d, want 0", n)
	}
	after := reg.Agents()
	for i := range before {
		if before[i].Status != after[i].Status {
			t.Errorf("%s changed on replay: %s -> %s", before[i].Name, before[i].Status, after[i].Status)
		}
	}
}

func TestMachine_Sweep(t *testing.T) {
	reg := agent.NewRegistry()
	m := NewMachine(reg, nil)
	m.Apply(agent.NameForecasting, detect.LabelCompleted)
	m.Apply(agent.NameAvailability, detect.LabelWorking)
	m.Apply(agent.NameCommunication, detect.LabelWorking)

	if n := m.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}

	want := map[string]agent.Status{
		agent.NameForecasting:   agent.StatusCompleted,
		agent.NameAvailability:  agent.StatusCompleted,
		agent.NameResearcher:    agent.StatusWaiting,
		agent.NamePerformance:   agent.StatusWaiting,
		agent.NameCommunication: agent.StatusCompleted,
	}
	for _, a := range reg.Agents() {
		if a.Status != want[a.Name] {
			t.Errorf("%s = %s, want %s", a.Name, a.Status, want[a.Name])
		}
	}
}
