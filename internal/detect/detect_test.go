package detect

import (
	"testing"

	"github.com/Iron-Ham/crewview/internal/agent"
)

func TestLabel_String(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{LabelNone, "none"},
		{LabelWorking, "working"},
		{LabelCompleted, "completed"},
		{Label(42), "none"},
	}

	for _, tc := range tests {
		if got := tc.label.String(); got != tc.want {
			t.Errorf("Label(%d).String() = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestLabel_Status(t *testing.T) {
	if got := LabelWorking.Status(); got != agent.StatusWorking {
		t.Errorf("LabelWorking.Status() = %q", got)
	}
	if got := LabelCompleted.Status(); got != agent.StatusCompleted {
		t.Errorf("LabelCompleted.Status() = %q", got)
	}
	if got := LabelNone.Status(); got != agent.StatusWaiting {
		t.Errorf("LabelNone.Status() = %q", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Label
	}{
		{"check glyph", "Status: ✅ Completed", LabelCompleted},
		{"tick glyph", "Status: ✓ Completed", LabelCompleted},
		{"mojibake check", "Status: âœ… Completed", LabelCompleted},
		{"mojibake tick", "Status: âœ“ Completed", LabelCompleted},
		{"plain status", "Status: Completed", LabelCompleted},
		{"task completed", "Task completed by Availability Analyst", LabelCompleted},
		{"lowercase task complete", "the task complete flag was set", LabelCompleted},
		{"in progress", "Status: In Progress", LabelWorking},
		{"executing", "Status: Executing Task...", LabelWorking},
		{"thinking", "Agent is Thinking...", LabelWorking},
		{"completion wins", "Status: In Progress then Status: Completed", LabelCompleted},
		{"no marker", "Reviewing historical demand data", LabelNone},
		{"completed word alone", "Completed", LabelNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.text); got != tc.want {
				t.Errorf("Normalize(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestStripANSI(t *testing.T) {
	in := "\x1b[32mAgent: Availability Analyst\x1b[0m"
	if got := StripANSI(in); got != "Agent: Availability Analyst" {
		t.Errorf("StripANSI() = %q", got)
	}
}

func TestAttribution(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"Assigned to: Availability Analyst", "Availability Analyst"},
		{"Agent: Communication Specialist, Status: In Progress", "Communication Specialist"},
		{"Agent: X, Assigned to: Supplier Performance Analyst", "Supplier Performance Analyst"},
		{"no attribution here", ""},
	}

	for _, tc := range tests {
		if got := Attribution(tc.line); got != tc.want {
			t.Errorf("Attribution(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"direct", "Demand Forecasting Specialist", agent.NameForecasting, true},
		{"direct substring", "Supplier Performance Analyst (lead)", agent.NamePerformance, true},
		{"case insensitive", "AVAILABILITY ANALYST", agent.NameAvailability, true},
		{"alias", "performance analyst", agent.NamePerformance, true},
		{"alias short", "supplier researcher", agent.NameResearcher, true},
		{"word overlap", "the forecasting team", agent.NameForecasting, true},
		{"role keyword", "forecaster", agent.NameForecasting, true},
		{"communication word", "Communication Lead", agent.NameCommunication, true},
		{"unknown", "Procurement Bot", "", false},
		{"empty", "   ", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(tc.input)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestResolveAlias_NoGuessing(t *testing.T) {
	if _, ok := ResolveAlias("forecasting team"); ok {
		t.Error("ResolveAlias should not match partial words")
	}
}

func matchMap(matches []Match) map[string]Match {
	out := make(map[string]Match, len(matches))
	for _, m := range matches {
		out[m.Agent] = m
	}
	return out
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name         string
		line         string
		want         map[string]Label
		wantStrategy string
	}{
		{
			name:         "directive style working",
			line:         "Agent: Demand Forecasting Specialist, Status: In Progress",
			want:         map[string]Label{agent.NameForecasting: LabelWorking},
			wantStrategy: StrategyExactName,
		},
		{
			name:         "mojibake completion",
			line:         "Agent: Demand Forecasting Specialist, Status: âœ… Completed",
			want:         map[string]Label{agent.NameForecasting: LabelCompleted},
			wantStrategy: StrategyExactName,
		},
		{
			name:         "exact name with bare task",
			line:         "Assigned to: Availability Analyst, Task: check inventory",
			want:         map[string]Label{agent.NameAvailability: LabelWorking},
			wantStrategy: StrategyExactName,
		},
		{
			name:         "task block fuzzy",
			line:         "📋 Task: research, Assigned to: supplier researcher, Status: ✓ Completed",
			want:         map[string]Label{agent.NameResearcher: LabelCompleted},
			wantStrategy: StrategyTaskBlock,
		},
		{
			name:         "declaration alias",
			line:         "Agent: Performance Analyst, Status: Executing Task...",
			want:         map[string]Label{agent.NamePerformance: LabelWorking},
			wantStrategy: StrategyDeclaration,
		},
		{
			name:         "task without status",
			line:         "Agent: Communication Lead, Task: draft email",
			want:         map[string]Label{agent.NameCommunication: LabelWorking},
			wantStrategy: StrategyTaskAssignment,
		},
		{
			name: "unresolvable agent",
			line: "Agent: Procurement Bot, Status: In Progress",
			want: map[string]Label{},
		},
		{
			name: "no attribution",
			line: "Status: Completed",
			want: map[string]Label{},
		},
		{
			name: "short line",
			line: "ok",
			want: map[string]Label{},
		},
		{
			name: "several agents on one line",
			line: "Assigned to: Availability Analyst and Agent: Alternative Supplier Researcher, Status: Completed",
			want: map[string]Label{
				agent.NameAvailability: LabelCompleted,
				agent.NameResearcher:   LabelCompleted,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := matchMap(c.Classify(tc.line))
			if len(got) != len(tc.want) {
				t.Fatalf("Classify(%q) = %v, want %v", tc.line, got, tc.want)
			}
			for name, label := range tc.want {
				m, ok := got[name]
				if !ok {
					t.Fatalf("missing match for %s", name)
				}
				if m.Label != label {
					t.Errorf("%s label = %v, want %v", name, m.Label, label)
				}
				if tc.wantStrategy != "" && m.Strategy != tc.wantStrategy {
					t.Errorf("%s strategy = %q, want %q", name, m.Strategy, tc.wantStrategy)
				}
			}
		})
	}
}

func TestClassifier_Classify_TreeBlocks(t *testing.T) {
	c := NewClassifier()
	tree := "🚀 Crew: crew\n" +
		"└── 📋 Task: a1\n" +
		"       Assigned to: Demand Forecasting Specialist\n" +
		"       Status: ✅ Completed\n" +
		"└── 📋 Task: b2\n" +
		"       Assigned to: Availability Analyst\n" +
		"       Status: Executing Task..."

	got := matchMap(c.Classify(tree))
	if got[agent.NameForecasting].Label != LabelCompleted {
		t.Errorf("forecasting = %v, want completed", got[agent.NameForecasting].Label)
	}
	if got[agent.NameAvailability].Label != LabelWorking {
		t.Errorf("availability = %v, want working", got[agent.NameAvailability].Label)
	}
	if len(got) != 2 {
		t.Errorf("got %d matches, want 2", len(got))
	}
}

func TestClassifier_ClassifySnapshot(t *testing.T) {
	c := NewClassifier()

	t.Run("proximity forward", func(t *testing.T) {
		got := matchMap(c.ClassifySnapshot([]string{
			"Supplier Performance Analyst finished ranking.",
			"Status: Completed",
		}))
		if len(got) != 1 || got[agent.NamePerformance].Label != LabelCompleted {
			t.Errorf("got %v, want performance completed only", got)
		}
		if got[agent.NamePerformance].Strategy != StrategyProximity {
			t.Errorf("strategy = %q", got[agent.NamePerformance].Strategy)
		}
	})

	t.Run("proximity reverse case insensitive", func(t *testing.T) {
		got := matchMap(c.ClassifySnapshot([]string{
			"TASK COMPLETE: handed over to",
			"communication specialist",
		}))
		if got[agent.NameCommunication].Label != LabelCompleted {
			t.Errorf("got %v, want communication completed", got)
		}
	})

	t.Run("proximity window exceeded", func(t *testing.T) {
		filler := make([]byte, 250)
		for i := range filler {
			filler[i] = 'x'
		}
		got := c.ClassifySnapshot([]string{"Availability Analyst " + string(filler) + " Status: Completed"})
		if len(got) != 0 {
			t.Errorf("got %v, want no matches", got)
		}
	})

	t.Run("researcher net", func(t *testing.T) {
		got := matchMap(c.ClassifySnapshot([]string{"Found alternative suppliers: Acme and Globex"}))
		if len(got) != 1 || got[agent.NameResearcher].Strategy != StrategyResearcherNet {
			t.Errorf("got %v, want researcher net only", got)
		}
	})

	t.Run("researcher net needs name", func(t *testing.T) {
		got := c.ClassifySnapshot([]string{"Alternative suppliers identified"})
		if len(got) != 0 {
			t.Errorf("got %v, want no matches", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := c.ClassifySnapshot(nil); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		input  string
		want   Directive
		wantOK bool
	}{
		{"Agent: Availability Analyst, Status: In Progress", Directive{agent.NameAvailability, LabelWorking}, true},
		{"agent: Availability Analyst, status: COMPLETED", Directive{agent.NameAvailability, LabelCompleted}, true},
		{"Agent: Availability Analyst, Status: Waiting", Directive{}, false},
		{"Agent: Unknown Agent, Status: Completed", Directive{}, false},
		{"Availability Analyst", Directive{}, false},
		{"", Directive{}, false},
	}

	for _, tc := range tests {
		got, ok := ParseDirective(tc.input)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParseDirective(%q) = (%+v, %v), want (%+v, %v)", tc.input, got, ok, tc.want, tc.wantOK)
		}
	}
}
