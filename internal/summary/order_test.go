package summary

import (
	"testing"

	"github.com/Iron-Ham/crewview/internal/agent"
)

func entries(key agent.Key, n int) []Entry {
	out := make([]Entry, n)
	for i := range out {
		out[i] = Entry{Key: key}
	}
	return out
}

func statuses(m map[agent.Key]agent.Status) StatusFunc {
	return func(k agent.Key) agent.Status {
		if s, ok := m[k]; ok {
			return s
		}
		return agent.StatusWaiting
	}
}

func TestOrder_CompletedShowsWholeSequence(t *testing.T) {
	seqs := DefaultSequences()
	got := Order(entries(agent.KeyForecasting, 2), statuses(map[agent.Key]agent.Status{
		agent.KeyForecasting: agent.StatusCompleted,
	}), seqs)

	if len(got) != 7 {
		t.Fatalf("got %d entries, want 7", len(got))
	}
	for i, e := range got {
		if e.Description != seqs[agent.KeyForecasting][i] {
			t.Errorf("got[%d] = %q, want %q", i, e.Description, seqs[agent.KeyForecasting][i])
		}
	}
	if !got[6].Completion || got[6].Description != "Demand forecasting completed" {
		t.Errorf("last entry = %+v", got[6])
	}
}

func TestOrder_WorkingPrefix(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 1},
		{3, 3},
		{5, 6},
		{6, 6},
	}

	for _, tc := range tests {
		got := Order(entries(agent.KeyPerformance, tc.n), statuses(map[agent.Key]agent.Status{
			agent.KeyPerformance: agent.StatusWorking,
		}), DefaultSequences())
		if len(got) != tc.want {
			t.Errorf("n=%d: got %d entries, want %d", tc.n, len(got), tc.want)
		}
		for _, e := range got {
			if e.Completion {
				t.Errorf("n=%d: working agent shows completion step", tc.n)
			}
		}
	}
}

func TestOrder_WaitingAndEmpty(t *testing.T) {
	st := statuses(map[agent.Key]agent.Status{
		agent.KeyAvailability: agent.StatusCompleted,
	})
	if got := Order(entries(agent.KeyForecasting, 3), st, DefaultSequences()); len(got) != 0 {
		t.Errorf("waiting agent produced %d entries", len(got))
	}
	if got := Order(nil, st, DefaultSequences()); len(got) != 0 {
		t.Errorf("completed agent without entries produced %d entries", len(got))
	}
}

func TestOrder_FollowsWorkflowSequence(t *testing.T) {
	var in []Entry
	in = append(in, entries(agent.KeyCommunication, 1)...)
	in = append(in, entries(agent.KeyForecasting, 1)...)
	in = append(in, entries(agent.KeyAltSupplier, 1)...)

	got := Order(in, statuses(map[agent.Key]agent.Status{
		agent.KeyForecasting:   agent.StatusWorking,
		agent.KeyAltSupplier:   agent.StatusWorking,
		agent.KeyCommunication: agent.StatusWorking,
	}), DefaultSequences())

	want := []agent.Key{agent.KeyForecasting, agent.KeyAltSupplier, agent.KeyCommunication}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, k := range want {
		if got[i].Key != k {
			t.Errorf("got[%d].Key = %q, want %q", i, got[i].Key, k)
		}
	}
}
