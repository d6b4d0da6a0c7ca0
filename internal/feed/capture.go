package feed

import (
	"strings"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/detect"
)

// noiseFragments are lowercase fragments of runtime chatter that never
// reaches the feed.
var noiseFragments = []string{
	"debug mode", "running on", "restarting", "debugger is", "debugger pin",
	"development server", "warning:", "wsgi", "werkzeug", "api_key", "monitor",
}

// agentFragments mark a line as relevant to the crew.
var agentFragments = []string{
	"agent", "task", "crew", "assigned to", "status:", "thinking...",
	"executing task", "completed", "in progress", "working on", "starting task",
	"analyzing", "processing", "specialist", "analyst", "researcher", "communication",
}

const treeTerminator = "Crew Execution Completed"

// Capture turns raw crew output into feed log lines. Tree blocks (lines
// containing "Task:" or "Assigned to:" up to a blank line or the crew
// completion banner) are emitted once as a single multi-line entry followed
// by their individual lines. Capture is not safe for concurrent use.
type Capture struct {
	logs         []string
	seen         map[string]bool
	tree         []string
	currentAgent string
}

// NewCapture returns an empty capture.
func NewCapture() *Capture {
	return &Capture{seen: make(map[string]bool)}
}

// Feed ingests one raw output line.
func (c *Capture) Feed(raw string) {
	line := strings.TrimRight(detect.StripANSI(raw), "\r")

	if len(c.tree) > 0 {
		if strings.TrimSpace(line) == "" {
			c.flushTree()
			return
		}
		c.tree = append(c.tree, line)
		if strings.Contains(line, treeTerminator) {
			c.flushTree()
		}
		return
	}
	if strings.Contains(line, "Task:") || strings.Contains(line, "Assigned to:") {
		c.tree = append(c.tree, line)
		return
	}
	c.addLine(line)
}

// Append adds a synthetic line, bypassing the relevance filter.
func (c *Capture) Append(line string) {
	c.logs = append(c.logs, line)
	c.seen[strings.TrimSpace(line)] = true
}

// Flush emits any pending tree block.
func (c *Capture) Flush() {
	if len(c.tree) > 0 {
		c.flushTree()
	}
}

// Logs returns a copy of the captured lines.
func (c *Capture) Logs() []string {
	return append([]string(nil), c.logs...)
}

// CurrentAgent returns the latest "Agent: X, Status: Y" directive.
func (c *Capture) CurrentAgent() string {
	return c.currentAgent
}

func (c *Capture) addLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || c.seen[trimmed] {
		return
	}
	lower := strings.ToLower(trimmed)
	for _, n := range noiseFragments {
		if strings.Contains(lower, n) {
			return
		}
	}
	if !isAgentRelated(trimmed, lower) {
		return
	}
	c.seen[trimmed] = true
	c.logs = append(c.logs, trimmed)

	if name := detect.Attribution(trimmed); name != "" {
		if canonical, ok := detect.Resolve(name); ok {
			c.setDirective(canonical, detect.Normalize(trimmed) == detect.LabelCompleted)
		}
	}
}

func isAgentRelated(line, lower string) bool {
	for _, f := range agentFragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	_, ok := detect.ResolveDirect(line)
	return ok
}

func (c *Capture) flushTree() {
	lines := c.tree
	c.tree = nil

	full := strings.Join(lines, "\n")
	if strings.TrimSpace(full) == "" {
		return
	}
	c.logs = append(c.logs, full)

	for _, name := range agent.Names() {
		if !strings.Contains(full, "Assigned to: "+name) {
			continue
		}
		switch detect.Normalize(full) {
		case detect.LabelCompleted:
			c.setDirective(name, true)
		case detect.LabelWorking:
			c.setDirective(name, false)
		}
	}

	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			c.logs = append(c.logs, l)
			c.seen[t] = true
		}
	}
}

func (c *Capture) setDirective(name string, completed bool) {
	status := "In Progress"
	if completed {
		status = "Completed"
	}
	c.currentAgent = "Agent: " + name + ", Status: " + status
}
