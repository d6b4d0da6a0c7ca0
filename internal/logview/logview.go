// Package logview formats raw log lines for the complete activity view and
// holds the complete/summary view-mode flag.
package logview

import (
	"regexp"
	"strings"
	"sync"

	"github.com/Iron-Ham/crewview/internal/detect"
	"github.com/Iron-Ham/crewview/internal/summary"
)

// Style classes of a complete-log entry.
const (
	StyleNone      = ""
	StyleCompleted = "completed-status"
	StyleWorking   = "working-status"
	StyleError     = "error-status"
)

// SystemAgent labels lines that name no agent.
const SystemAgent = "System"

// Entry is one line of the complete view.
type Entry struct {
	Agent   string
	Message string
	Style   string
}

var bulletReplacer = strings.NewReplacer(
	"□", "•", "■", "•", "▫", "•", "▪", "•",
	"â–¡", "•", "â– ", "•", "â–«", "•", "â–ª", "•",
)

var crewMarkers = []string{"🚀", "📋", "🤖", "Agent:", "Task:", "Status:"}

var errorRegex = regexp.MustCompile(`(?i)\berror\b`)

// Format builds the complete-view entry for a raw line. It returns false for
// lines that are empty after cleanup.
func Format(raw string) (Entry, bool) {
	clean := detect.StripANSI(raw)
	msg := clean
	if i := strings.Index(msg, "INFO:"); i >= 0 {
		msg = msg[i+len("INFO:"):]
	}
	msg = bulletReplacer.Replace(msg)
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return Entry{}, false
	}

	// The agent may be named before the INFO: marker.
	name := displayName(detect.Attribution(clean))
	if name == "" {
		name = SystemAgent
	}
	return Entry{Agent: name, Message: msg, Style: classify(msg)}, true
}

// displayName trims trailing status text from an attributed name.
func displayName(name string) string {
	name, _, _ = strings.Cut(name, ",")
	name, _, _ = strings.Cut(name, " Status:")
	name, _, _ = strings.Cut(name, " INFO:")
	return strings.TrimSpace(name)
}

func classify(msg string) string {
	switch detect.Normalize(msg) {
	case detect.LabelCompleted:
		return StyleCompleted
	case detect.LabelWorking:
		return StyleWorking
	}

	crew := false
	for _, m := range crewMarkers {
		if strings.Contains(msg, m) {
			crew = true
			break
		}
	}
	switch {
	case crew && strings.Contains(msg, "Completed"):
		return StyleCompleted
	case crew && (strings.Contains(msg, "In Progress") || strings.Contains(msg, "Thinking")):
		return StyleWorking
	case !crew && errorRegex.MatchString(msg):
		return StyleError
	}
	return StyleNone
}

// Mode selects which activity view is displayed.
type Mode int

const (
	ModeComplete Mode = iota
	ModeSummary
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeSummary {
		return "summary"
	}
	return "complete"
}

// View holds both activity views of a run and the current mode.
// Toggling the mode never alters either view's contents.
type View struct {
	mu       sync.RWMutex
	mode     Mode
	complete []Entry
}

// NewView creates an empty view in the given mode.
func NewView(mode Mode) *View {
	return &View{mode: mode}
}

// Reset clears the complete log. The mode is kept.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.complete = nil
}

// Append formats and appends a raw line to the complete log.
func (v *View) Append(raw string) (Entry, bool) {
	e, ok := Format(raw)
	if !ok {
		return Entry{}, false
	}
	v.mu.Lock()
	v.complete = append(v.complete, e)
	v.mu.Unlock()
	return e, true
}

// Complete returns the complete log in arrival order.
func (v *View) Complete() []Entry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]Entry(nil), v.complete...)
}

// Mode returns the current view mode.
func (v *View) Mode() Mode {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mode
}

// SetMode switches the view mode.
func (v *View) SetMode(m Mode) {
	v.mu.Lock()
	v.mode = m
	v.mu.Unlock()
}

// Toggle flips between complete and summary mode and returns the new mode.
func (v *View) Toggle() Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode == ModeSummary {
		v.mode = ModeComplete
	} else {
		v.mode = ModeSummary
	}
	return v.mode
}

// Condensed orders summary entries for display.
func Condensed(entries []summary.Entry, statusOf summary.StatusFunc) []summary.Entry {
	return summary.Order(entries, statusOf, summary.DefaultSequences())
}
