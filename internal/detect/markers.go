package detect

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/crewview/internal/agent"
)

// Label is the normalized lifecycle evidence found in a piece of text.
type Label int

const (
	// LabelNone means no status marker was found.
	LabelNone Label = iota
	// LabelWorking means the text carries an in-progress marker.
	LabelWorking
	// LabelCompleted means the text carries a completion marker.
	LabelCompleted
)

// String returns a human-readable string for the label.
func (l Label) String() string {
	switch l {
	case LabelWorking:
		return "working"
	case LabelCompleted:
		return "completed"
	default:
		return "none"
	}
}

// Status converts a label to the agent status it requests.
// LabelNone maps to waiting, which the state machine never accepts as a move.
func (l Label) Status() agent.Status {
	switch l {
	case LabelWorking:
		return agent.StatusWorking
	case LabelCompleted:
		return agent.StatusCompleted
	default:
		return agent.StatusWaiting
	}
}

// Marker patterns. The mis-decoded variants ("âœ…", "âœ“") come from the crew
// process writing UTF-8 through a Latin-1 console.
var (
	CompletionPatterns = []string{
		`(?:✅|✓|âœ…|âœ“)\s*Completed`,
		`Status:\s*Completed`,
		`(?i)\btask complete`,
	}

	WorkingPatterns = []string{
		`Status:\s*In Progress`,
		`Status:\s*Executing Task`,
		`Thinking\.\.\.`,
	}

	// proximityMarkers is the alternation used by the snapshot proximity net.
	proximityMarkers = `(?:✅ Completed|✓ Completed|âœ… Completed|âœ“ Completed|Status: Completed|task complete)`
)

var (
	completionRegexps = compilePatterns(CompletionPatterns)
	workingRegexps    = compilePatterns(WorkingPatterns)
)

// compilePatterns compiles a list of regex pattern strings.
// Invalid patterns are silently skipped.
func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			compiled = append(compiled, re)
		}
	}
	return compiled
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Normalize maps the raw markers in text to a Label.
// Completion evidence wins over working evidence.
func Normalize(text string) Label {
	if matchesAny(text, completionRegexps) {
		return LabelCompleted
	}
	if matchesAny(text, workingRegexps) {
		return LabelWorking
	}
	return LabelNone
}

// StripANSI removes terminal escape sequences from text.
func StripANSI(text string) string {
	return ansi.Strip(text)
}

var (
	assignedToRegex = regexp.MustCompile(`(?i)Assigned to:\s*([^\n]+)`)
	agentRegex      = regexp.MustCompile(`(?i)Agent:\s*([^,\n]+)`)
)

// Attribution extracts the agent name a line claims to be about, preferring
// "Assigned to:" over "Agent:". It returns "" when the line names no agent.
func Attribution(line string) string {
	if m := assignedToRegex.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := agentRegex.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
