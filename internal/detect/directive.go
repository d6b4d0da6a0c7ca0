package detect

import (
	"regexp"
	"strings"
)

var directiveRegex = regexp.MustCompile(`(?i)Agent:\s*([^,]+),\s*Status:\s*([^,\n]+)`)

// Directive is a parsed current_agent field.
type Directive struct {
	Agent string // canonical agent name
	Label Label
}

// ParseDirective parses an "Agent: <name>, Status: <label>" string as sent
// in a snapshot's current_agent field. Only labels that request a move
// (in progress, completed) are returned; anything else yields ok=false.
func ParseDirective(s string) (Directive, bool) {
	m := directiveRegex.FindStringSubmatch(s)
	if m == nil {
		return Directive{}, false
	}
	name, ok := ResolveDirect(strings.TrimSpace(m[1]))
	if !ok {
		return Directive{}, false
	}

	status := strings.ToLower(m[2])
	var label Label
	switch {
	case strings.Contains(status, "completed"):
		label = LabelCompleted
	case strings.Contains(status, "in progress"):
		label = LabelWorking
	default:
		return Directive{}, false
	}
	return Directive{Agent: name, Label: label}, true
}
