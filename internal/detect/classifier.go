package detect

import (
	"regexp"
	"strings"

	"github.com/Iron-Ham/crewview/internal/agent"
)

// Match is one agent state inferred from text.
type Match struct {
	Agent    string // canonical agent name
	Label    Label
	Strategy string // name of the strategy that produced the match
}

// Strategy is a single line-level inference rule.
type Strategy struct {
	Name     string
	Priority int
	Match    func(line string) []Match
}

// Strategy names.
const (
	StrategyExactName      = "exact-name"
	StrategyTaskBlock      = "task-block"
	StrategyDeclaration    = "agent-declaration"
	StrategyTaskAssignment = "task-assignment"
	StrategyProximity      = "proximity"
	StrategyResearcherNet  = "researcher-net"
	StrategyDirective      = "directive"
)

var (
	taskMarkerRegex     = regexp.MustCompile(`Task:`)
	assignedToNameRegex = regexp.MustCompile(`Assigned to:\s*([^,\n]+)`)
	agentNameRegex      = regexp.MustCompile(`Agent:\s*([^,\n]+)`)
	// taskLineRegex starts a new block inside a multi-line tree entry.
	taskLineRegex = regexp.MustCompile(`^[\s│├└─]*(?:📋|ðŸ“‹)?\s*Task:`)
)

// minLineLen is the shortest line worth classifying.
const minLineLen = 5

// Classifier runs the strategy table over log text.
type Classifier struct {
	strategies []Strategy
	proximity  []proximityRule
}

type proximityRule struct {
	name    string
	forward *regexp.Regexp
	reverse *regexp.Regexp
}

// NewClassifier creates a classifier with the default strategy table.
func NewClassifier() *Classifier {
	c := &Classifier{
		strategies: DefaultStrategies(),
	}
	for _, name := range agent.Names() {
		quoted := regexp.QuoteMeta(name)
		c.proximity = append(c.proximity, proximityRule{
			name:    name,
			forward: regexp.MustCompile(`(?i)` + quoted + `[\s\S]{1,200}` + proximityMarkers),
			reverse: regexp.MustCompile(`(?i)` + proximityMarkers + `[\s\S]{1,200}` + quoted),
		})
	}
	return c
}

// DefaultStrategies returns the line-level strategies in priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyExactName, Priority: 1, Match: matchExactName},
		{Name: StrategyTaskBlock, Priority: 2, Match: matchTaskBlock},
		{Name: StrategyDeclaration, Priority: 3, Match: matchDeclaration},
		{Name: StrategyTaskAssignment, Priority: 4, Match: matchTaskAssignment},
	}
}

// Classify returns the inferred states for one log line. Multi-line tree
// entries are split into task blocks so each block's status marker only
// applies to the agent assigned in that block. For each agent the first
// match in priority order wins.
func (c *Classifier) Classify(line string) []Match {
	if len(strings.TrimSpace(line)) < minLineLen {
		return nil
	}

	var out []Match
	seen := make(map[string]bool)
	for _, block := range splitBlocks(line) {
		for _, s := range c.strategies {
			for _, m := range s.Match(block) {
				if seen[m.Agent] {
					continue
				}
				seen[m.Agent] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// ClassifySnapshot runs the whole-text nets over every line of a snapshot.
func (c *Classifier) ClassifySnapshot(lines []string) []Match {
	text := strings.Join(lines, "\n")
	if text == "" {
		return nil
	}

	var out []Match
	if (strings.Contains(text, agent.NameResearcher) && strings.Contains(text, "Alternative suppliers identified")) ||
		strings.Contains(text, "Found alternative suppliers") {
		out = append(out, Match{Agent: agent.NameResearcher, Label: LabelCompleted, Strategy: StrategyResearcherNet})
	}
	for _, rule := range c.proximity {
		if rule.forward.MatchString(text) || rule.reverse.MatchString(text) {
			out = append(out, Match{Agent: rule.name, Label: LabelCompleted, Strategy: StrategyProximity})
		}
	}
	return out
}

// splitBlocks splits a multi-line entry at each task line. Single-line input
// is returned as is.
func splitBlocks(text string) []string {
	if !strings.Contains(text, "\n") {
		return []string{text}
	}
	var blocks []string
	var cur []string
	for _, l := range strings.Split(text, "\n") {
		if taskLineRegex.MatchString(l) && len(cur) > 0 {
			blocks = append(blocks, strings.Join(cur, "\n"))
			cur = nil
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		blocks = append(blocks, strings.Join(cur, "\n"))
	}
	return blocks
}

func matchExactName(line string) []Match {
	label := Normalize(line)
	if label == LabelNone && taskMarkerRegex.MatchString(line) {
		label = LabelWorking
	}
	if label == LabelNone {
		return nil
	}
	var out []Match
	for _, name := range agent.Names() {
		if strings.Contains(line, "Assigned to: "+name) || strings.Contains(line, "Agent: "+name) {
			out = append(out, Match{Agent: name, Label: label, Strategy: StrategyExactName})
		}
	}
	return out
}

func matchTaskBlock(line string) []Match {
	if !taskMarkerRegex.MatchString(line) {
		return nil
	}
	label := Normalize(line)
	if label == LabelNone {
		return nil
	}
	m := assignedToNameRegex.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	name, ok := Resolve(m[1])
	if !ok {
		return nil
	}
	return []Match{{Agent: name, Label: label, Strategy: StrategyTaskBlock}}
}

func matchDeclaration(line string) []Match {
	label := Normalize(line)
	if label == LabelNone {
		return nil
	}
	var out []Match
	for _, re := range []*regexp.Regexp{agentNameRegex, assignedToNameRegex} {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if name, ok := Resolve(m[1]); ok {
			out = append(out, Match{Agent: name, Label: label, Strategy: StrategyDeclaration})
		}
	}
	return out
}

func matchTaskAssignment(line string) []Match {
	if Normalize(line) != LabelNone || !taskMarkerRegex.MatchString(line) {
		return nil
	}
	ref := Attribution(line)
	if ref == "" {
		return nil
	}
	name, ok := Resolve(ref)
	if !ok {
		return nil
	}
	return []Match{{Agent: name, Label: LabelWorking, Strategy: StrategyTaskAssignment}}
}
